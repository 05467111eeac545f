package wikicode

import (
	"strconv"
	"strings"
)

// Param is one template parameter. Positional parameters get their literal
// position as the name ("1", "2", ...). Name and Value keep the original
// markup untrimmed; nested constructs stay in their literal form.
type Param struct {
	Name  string
	Value string
}

// Template is a parsed "{{Name|a|b=c}}" construct.
type Template struct {
	Name   string
	Params []Param

	start int // byte offset of "{{" in the document
}

// Param returns the value of the parameter with the given name, matching
// named parameters by their trimmed name. The second result reports presence.
func (t *Template) Param(name string) (string, bool) {
	for _, p := range t.Params {
		if strings.TrimSpace(p.Name) == name {
			return p.Value, true
		}
	}
	return "", false
}

// scanTemplates extracts every template in text, document order, each nested
// template directly after its enclosing one. base is the absolute offset of
// text within the document. Unterminated "{{" is treated as plain text.
func scanTemplates(text string, base int) []*Template {
	var out []*Template
	i := 0
	for i < len(text)-1 {
		if text[i] != '{' || text[i+1] != '{' {
			i++
			continue
		}
		end := matchBraces(text, i)
		if end < 0 {
			i += 2
			continue
		}
		tpl, nested := parseTemplate(text[i+2:end-2], base+i+2)
		tpl.start = base + i
		out = append(out, tpl)
		out = append(out, nested...)
		i = end
	}
	return out
}

// matchBraces returns the index just past the "}}" closing the "{{" at start,
// or -1 when unterminated. Nested "{{ }}" pairs are balanced by depth.
func matchBraces(text string, start int) int {
	depth := 0
	i := start
	for i < len(text)-1 {
		switch {
		case text[i] == '{' && text[i+1] == '{':
			depth++
			i += 2
		case text[i] == '}' && text[i+1] == '}':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// parseTemplate splits the inner text of a template ("Name|a|b=c") into name
// and parameters, and scans parameter values for nested templates. base is
// the absolute offset of inner within the document.
func parseTemplate(inner string, base int) (*Template, []*Template) {
	parts := splitTop(inner)
	tpl := &Template{Name: strings.TrimSpace(inner[parts[0].start:parts[0].end])}
	var nested []*Template
	pos := 0
	for _, p := range parts[1:] {
		raw := inner[p.start:p.end]
		if eq := topLevelIndex(raw, '='); eq >= 0 {
			tpl.Params = append(tpl.Params, Param{Name: raw[:eq], Value: raw[eq+1:]})
			nested = append(nested, scanTemplates(raw[eq+1:], base+p.start+eq+1)...)
		} else {
			pos++
			tpl.Params = append(tpl.Params, Param{Name: strconv.Itoa(pos), Value: raw})
			nested = append(nested, scanTemplates(raw, base+p.start)...)
		}
	}
	return tpl, nested
}

type span struct{ start, end int }

// splitTop splits s on '|' characters that are not inside nested "{{ }}" or
// "[[ ]]" pairs. The result always has at least one span.
func splitTop(s string) []span {
	var parts []span
	depth := 0
	start := 0
	i := 0
	for i < len(s) {
		switch {
		case i+1 < len(s) && (s[i] == '{' && s[i+1] == '{' || s[i] == '[' && s[i+1] == '['):
			depth++
			i += 2
		case i+1 < len(s) && (s[i] == '}' && s[i+1] == '}' || s[i] == ']' && s[i+1] == ']'):
			depth--
			i += 2
		case s[i] == '|' && depth <= 0:
			parts = append(parts, span{start, i})
			start = i + 1
			i++
		default:
			i++
		}
	}
	return append(parts, span{start, len(s)})
}

// topLevelIndex returns the index of the first c outside nested pairs, -1 if none.
func topLevelIndex(s string, c byte) int {
	depth := 0
	i := 0
	for i < len(s) {
		switch {
		case i+1 < len(s) && (s[i] == '{' && s[i+1] == '{' || s[i] == '[' && s[i+1] == '['):
			depth++
			i += 2
		case i+1 < len(s) && (s[i] == '}' && s[i+1] == '}' || s[i] == ']' && s[i+1] == ']'):
			depth--
			i += 2
		case s[i] == c && depth <= 0:
			return i
		default:
			i++
		}
	}
	return -1
}
