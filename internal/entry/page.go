// Package entry implements the German Wiktionary extraction pipeline: it
// navigates a parsed page to its German section, enumerates word form
// subsections, classifies part of speech and pulls inflection tables, while
// recording a diagnostic Status whenever an expected structure is missing or
// ambiguous. Malformed pages never fail; they degrade to empty results.
package entry

import (
	"regexp"

	"github.com/lennon-c/de-wiktio/internal/wikicode"
)

// Wiki namespace identifiers. Each page variant validates retrieved pages
// against its namespace and keeps its own dump cache.
const (
	NamespaceEntry   = "0"
	NamespaceFlexion = "108"
)

// Origin records how a page's wikitext was obtained. Companion lookups
// (Entry to Flexion) mirror the parent's origin to keep one data source
// per extraction.
type Origin string

const (
	OriginExport Origin = "export"
	OriginDump   Origin = "dump"
	OriginDirect Origin = "direct"
)

// germanSectionRe matches the language marker inside a level-2 heading title,
// e.g. "Haus ({{Sprache|Deutsch}})".
var germanSectionRe = regexp.MustCompile(`\|Deutsch`)

// page carries the state shared by Entry and Flexion: identity, raw
// wikitext, diagnostic status and the memoized German section.
type page struct {
	title    string
	wikitext string
	status   Status
	origin   Origin
	loader   *Loader

	doc      *wikicode.Document
	lang     *wikicode.Section
	langDone bool
}

// Title returns the page title, which is also the lookup key in dump mode.
func (p *page) Title() string { return p.title }

// Wikitext returns the raw markup; empty when retrieval failed.
func (p *page) Wikitext() string { return p.wikitext }

// Status returns the current diagnostic status.
func (p *page) Status() Status { return p.status }

// Origin returns how the wikitext was obtained.
func (p *page) Origin() Origin { return p.origin }

// fail records a failure status. The first failure wins: once non-OK, later
// derivations never replace the recorded diagnostic.
func (p *page) fail(s Status) {
	if p.status == StatusOK {
		p.status = s
	}
}

func (p *page) parsed() *wikicode.Document {
	if p.doc == nil {
		p.doc = wikicode.Parse(p.wikitext)
	}
	return p.doc
}

// LanguageSection returns the page's German section. Exactly one level-2
// section matching the language marker is a success; zero or several record
// StatusNoSection or StatusAmbiguousSection and yield nil. Memoized.
func (p *page) LanguageSection() *wikicode.Section {
	if p.langDone {
		return p.lang
	}
	p.langDone = true
	if !p.status.OK() {
		return nil
	}
	sections := p.parsed().Sections(2, germanSectionRe, true)
	switch len(sections) {
	case 1:
		p.lang = sections[0]
	case 0:
		p.fail(StatusNoSection)
	default:
		p.fail(StatusAmbiguousSection)
	}
	return p.lang
}

// Outline returns the indented heading tree of the whole page, for
// diagnostics on unfamiliar page layouts.
func (p *page) Outline() string {
	return p.parsed().Root().Outline()
}
