package entry

import (
	"regexp"

	"github.com/lennon-c/de-wiktio/internal/wikicode"
)

// posNameRe extracts the grammatical category from a flexion template name,
// e.g. "Deutsch Verb unregelmäßig".
var posNameRe = regexp.MustCompile(`(Adjektiv|Verb|Adverb|Gerundivum|Numerale)`)

// Flexion is a standalone inflection-table page (namespace "108"), the
// companion of a verb or adjective Entry. Its templates carry the full
// inflection tables that the main page only summarizes.
type Flexion struct {
	page

	tpls     []*wikicode.Template
	tplsDone bool
	pos      []string
	posDone  bool
}

// NewFlexion builds a Flexion directly from raw wikitext.
func NewFlexion(title, wikitext string) *Flexion {
	return newFlexion(title, wikitext, StatusOK, OriginDirect, nil)
}

func newFlexion(title, wikitext string, status Status, origin Origin, loader *Loader) *Flexion {
	f := &Flexion{page: page{
		title:    title,
		wikitext: wikitext,
		status:   status,
		origin:   origin,
		loader:   loader,
	}}
	f.LanguageSection()
	return f
}

// FlexionTemplates returns every template in the body of the German section,
// headings excluded, document order. Zero templates records
// StatusNoFlexionTemplates; several record StatusMultipleFlexionTemplates.
// The count anomaly is reported but the templates are still returned.
// Memoized.
func (f *Flexion) FlexionTemplates() []*wikicode.Template {
	if f.tplsDone {
		return f.tpls
	}
	f.tplsDone = true

	lang := f.LanguageSection()
	if lang == nil {
		return nil
	}

	f.tpls = lang.BodyTemplates(nil)
	switch {
	case len(f.tpls) == 0:
		f.fail(StatusNoFlexionTemplates)
	case len(f.tpls) > 1:
		f.fail(StatusMultipleFlexionTemplates)
	}
	return f.tpls
}

// POS returns the grammatical categories found in the flexion template
// names, document order, duplicates preserved. No match records StatusNoPOS;
// more than one distinct category records StatusMultiplePOS while the full
// list is still returned. Memoized.
func (f *Flexion) POS() []string {
	if f.posDone {
		return f.pos
	}
	tpls := f.FlexionTemplates()
	f.posDone = true

	if f.LanguageSection() == nil {
		return nil
	}

	for _, tpl := range tpls {
		if m := posNameRe.FindStringSubmatch(tpl.Name); m != nil {
			f.pos = append(f.pos, m[1])
		}
	}

	switch {
	case len(f.pos) == 0:
		f.fail(StatusNoPOS)
	case countDistinct(f.pos) > 1:
		f.fail(StatusMultiplePOS)
	}
	return f.pos
}

// Inflections maps every flexion template through TemplateParams, without
// additional filtering.
func (f *Flexion) Inflections() []ParamMap {
	tpls := f.FlexionTemplates()
	out := make([]ParamMap, 0, len(tpls))
	for _, tpl := range tpls {
		out = append(out, TemplateParams(tpl))
	}
	return out
}

func countDistinct(ss []string) int {
	seen := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		seen[s] = struct{}{}
	}
	return len(seen)
}
