package entry

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/lennon-c/de-wiktio/internal/wikicode"
)

var (
	// posTemplateRe matches the part-of-speech templates of a word form,
	// usually sitting in its heading: {{Wortart|Substantiv|Deutsch}}.
	posTemplateRe = regexp.MustCompile(`Wortart`)

	// overviewTemplateRe matches the compact inflection tables embedded in
	// the main page, e.g. {{Deutsch Substantiv Übersicht|...}}.
	overviewTemplateRe = regexp.MustCompile(`Übersicht`)
)

// imageParamMarker tags overview parameters that carry images rather than
// word forms ("Bild", "Bild 1", "Bild-breite", ...).
const imageParamMarker = "Bild"

// flexionPOS are the categories whose entries have a companion Flexion page.
var flexionPOS = []string{"Verb", "Adjektiv"}

// WordForm is one part-of-speech subsection of an Entry's German section.
// It borrows its section from the parent Entry and carries its own status.
type WordForm struct {
	section *wikicode.Section
	parent  *Entry
	status  Status

	pos          []string
	posDone      bool
	overview     []ParamMap
	overviewDone bool
	flexion      *Flexion
	flexionDone  bool
}

// Status returns the word form's diagnostic status.
func (w *WordForm) Status() Status { return w.status }

func (w *WordForm) fail(s Status) {
	if w.status == StatusOK {
		w.status = s
	}
}

// Section returns the wrapped subsection.
func (w *WordForm) Section() *wikicode.Section { return w.section }

// Heading returns the first heading of the subsection, used for diagnostics.
func (w *WordForm) Heading() *wikicode.Heading {
	hs := w.section.Headings()
	if len(hs) == 0 {
		return nil
	}
	return hs[0]
}

// POSTags returns the part-of-speech classifications of the word form: the
// first positional parameter of each Wortart template in the section,
// non-empty values only, document order. An empty result records
// StatusNoPOS. Memoized.
func (w *WordForm) POSTags() []string {
	if w.posDone {
		return w.pos
	}
	w.posDone = true

	for _, tpl := range w.section.Templates(posTemplateRe) {
		v, ok := tpl.Param("1")
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			w.pos = append(w.pos, v)
		}
	}
	if len(w.pos) == 0 {
		w.fail(StatusNoPOS)
	}
	return w.pos
}

// OverviewTables returns the parameter tables of the section's Übersicht
// templates, document order. With all=false, keys containing the image
// marker and purely numeric positional keys are filtered out; they carry no
// inflection data for this template family. A word form without overview
// tables is a normal empty result, not a failure. The unfiltered tables are
// memoized; filtering happens per call.
func (w *WordForm) OverviewTables(all bool) []ParamMap {
	if !w.overviewDone {
		w.overviewDone = true
		tpls := w.section.Templates(overviewTemplateRe)
		w.overview = make([]ParamMap, 0, len(tpls))
		for _, tpl := range tpls {
			w.overview = append(w.overview, TemplateParams(tpl))
		}
	}
	if all {
		return w.overview
	}

	out := make([]ParamMap, 0, len(w.overview))
	for _, table := range w.overview {
		filtered := ParamMap{}
		for _, k := range table.Keys() {
			if strings.Contains(k, imageParamMarker) || isNumeric(k) {
				continue
			}
			v, _ := table.Get(k)
			filtered.Set(k, v)
		}
		out = append(out, filtered)
	}
	return out
}

// FlexionPage resolves the companion Flexion page of the word form. The
// lookup happens only when the status is OK and the POS set intersects
// {Verb, Adjektiv}; otherwise the companion is nil without any retrieval.
// The companion title is "Flexion:" plus the parent title, retrieved through
// the parent's loader mirroring the parent's origin. A transport failure is
// returned as an error and not memoized; everything else is memoized.
func (w *WordForm) FlexionPage(ctx context.Context) (*Flexion, error) {
	if w.flexionDone {
		return w.flexion, nil
	}

	tags := w.POSTags()
	if !w.status.OK() || !intersects(tags, flexionPOS) {
		w.flexionDone = true
		return nil, nil
	}

	if w.parent == nil || w.parent.loader == nil {
		// Directly constructed entries have no page source to consult.
		w.flexionDone = true
		return nil, nil
	}

	title := "Flexion:" + w.parent.Title()
	var (
		fl  *Flexion
		err error
	)
	switch w.parent.Origin() {
	case OriginExport:
		fl, err = w.parent.loader.FlexionFromExport(ctx, title)
	default:
		fl, err = w.parent.loader.FlexionFromDump(ctx, title)
	}
	if err != nil {
		return nil, err
	}

	w.flexion = fl
	w.flexionDone = true
	return w.flexion, nil
}

// ExtendedInflections returns the inflection tables of the companion Flexion
// page, or an empty result when no companion resolves.
func (w *WordForm) ExtendedInflections(ctx context.Context) ([]ParamMap, error) {
	fl, err := w.FlexionPage(ctx)
	if err != nil {
		return nil, err
	}
	if fl == nil {
		return nil, nil
	}
	return fl.Inflections(), nil
}

// LabeledSection extracts a labeled paragraph from the section's raw
// wikitext: a paragraph whose first line is exactly "{{label}}" with no
// parameters, preceded and followed by blank lines. The captured span runs
// from the second line to the end of the paragraph. This is a raw-text
// extraction, not tree traversal; the paragraph convention is not reliably
// representable as section structure. With strip=true the span is rendered
// as plain text using opts. The second result reports whether a paragraph
// was found.
func (w *WordForm) LabeledSection(label string, strip bool, opts *wikicode.StripOptions) (string, bool) {
	re, err := regexp.Compile(`\n\n\{\{` + regexp.QuoteMeta(label) + `\}\}\n(?s:(.+?))\n\n`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(w.section.Text())
	if m == nil {
		return "", false
	}
	content := m[1]
	if strip {
		content = wikicode.StripMarkup(content, opts)
	}
	return content, true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
