package wikicode

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StripOptions controls plain-text rendering.
type StripOptions struct {
	// KeepTemplateParams replaces each template with the text of its
	// parameter values instead of dropping it entirely.
	KeepTemplateParams bool
	// KeepWhitespace disables the final whitespace collapsing pass.
	KeepWhitespace bool
}

var (
	htmlCommentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	fileLinkRe     = regexp.MustCompile(`\[\[(?:Datei|Bild|File|Image):[^\]]*\]\]`)
	wikiLinkRe     = regexp.MustCompile(`\[\[(?:[^|\]]*\|)?([^\]]*)\]\]`)
	externalLinkRe = regexp.MustCompile(`\[(?:https?|ftp)://[^ \]]*(?: ([^\]]*))?\]`)
	headingFenceRe = regexp.MustCompile(`(?m)^=+[ \t]*(.*?)[ \t]*=+[ \t]*$`)
	listMarkerRe   = regexp.MustCompile(`(?m)^[*#:;]+[ \t]*`)
	multiSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)

	// htmlPolicy drops every embedded HTML tag, keeping the inner text.
	htmlPolicy = bluemonday.StrictPolicy()
)

// StripMarkup renders wikitext as plain text: HTML comments and templates are
// removed (or reduced to their parameter text), links are resolved to their
// labels, file embeds are dropped, bold/italic quotes, heading fences, list
// markers and embedded HTML tags are stripped. nil opts select the defaults
// (templates dropped, whitespace collapsed).
func StripMarkup(text string, opts *StripOptions) string {
	if opts == nil {
		opts = &StripOptions{}
	}
	if text == "" {
		return ""
	}

	s := htmlCommentRe.ReplaceAllString(text, "")
	s = stripTemplates(s, opts.KeepTemplateParams)
	s = fileLinkRe.ReplaceAllString(s, "")
	s = wikiLinkRe.ReplaceAllString(s, "$1")
	s = externalLinkRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "'''", "")
	s = strings.ReplaceAll(s, "''", "")
	s = headingFenceRe.ReplaceAllString(s, "$1")
	s = listMarkerRe.ReplaceAllString(s, "")
	s = html.UnescapeString(htmlPolicy.Sanitize(s))

	if !opts.KeepWhitespace {
		s = multiSpaceRe.ReplaceAllString(s, " ")
		s = multiNewlineRe.ReplaceAllString(s, "\n\n")
		s = strings.TrimSpace(s)
	}
	return s
}

// stripTemplates removes every balanced "{{...}}" span. With keep=true the
// template is replaced by its parameter values (recursively stripped), joined
// with single spaces. Unterminated braces stay as literal text.
func stripTemplates(text string, keep bool) string {
	var b strings.Builder
	i := 0
	for i < len(text) {
		if i+1 < len(text) && text[i] == '{' && text[i+1] == '{' {
			end := matchBraces(text, i)
			if end < 0 {
				b.WriteString(text[i : i+2])
				i += 2
				continue
			}
			if keep {
				b.WriteString(templateParamText(text[i+2 : end-2]))
			}
			i = end
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func templateParamText(inner string) string {
	parts := splitTop(inner)
	var vals []string
	for _, p := range parts[1:] {
		raw := inner[p.start:p.end]
		if eq := topLevelIndex(raw, '='); eq >= 0 {
			raw = raw[eq+1:]
		}
		raw = strings.TrimSpace(stripTemplates(raw, true))
		if raw != "" {
			vals = append(vals, raw)
		}
	}
	return strings.Join(vals, " ")
}
