package entry

import "regexp"

// wordFormSectionRe matches level-3 headings that introduce a part-of-speech
// subsection, e.g. "{{Wortart|Substantiv|Deutsch}}, {{n}}".
var wordFormSectionRe = regexp.MustCompile(`Wortart`)

// Entry is a main-content dictionary page (namespace "0") for one headword.
type Entry struct {
	page

	forms     []*WordForm
	formsDone bool
}

// NewEntry builds an Entry directly from raw wikitext, bypassing any page
// source. The German section is located eagerly so retrieval and section
// failures are visible before any derivation runs.
func NewEntry(title, wikitext string) *Entry {
	return newEntry(title, wikitext, StatusOK, OriginDirect, nil)
}

func newEntry(title, wikitext string, status Status, origin Origin, loader *Loader) *Entry {
	e := &Entry{page: page{
		title:    title,
		wikitext: wikitext,
		status:   status,
		origin:   origin,
		loader:   loader,
	}}
	e.LanguageSection()
	return e
}

// WordForms returns the part-of-speech subsections of the German section:
// every level-3 section whose heading carries a Wortart template, at any
// nesting depth, in document order. A page with no such section records
// StatusNoWordForms; any prior failure yields an empty result. Memoized.
func (e *Entry) WordForms() []*WordForm {
	if e.formsDone {
		return e.forms
	}
	e.formsDone = true

	lang := e.LanguageSection()
	if lang == nil {
		return nil
	}

	sections := lang.Sections(3, wordFormSectionRe, true)
	if len(sections) == 0 {
		e.fail(StatusNoWordForms)
		return nil
	}

	e.forms = make([]*WordForm, 0, len(sections))
	for _, s := range sections {
		e.forms = append(e.forms, &WordForm{section: s, parent: e, status: StatusOK})
	}
	return e.forms
}
