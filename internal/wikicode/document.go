// Package wikicode parses MediaWiki wikitext into a navigable document tree:
// sections by heading level, heading enumeration, template extraction and
// plain-text rendering. The parser is tolerant by construction: malformed
// markup (unterminated templates, stray braces, broken headings) degrades to
// plain text and never fails.
package wikicode

import (
	"fmt"
	"regexp"
	"strings"
)

// Heading is a single "== Title ==" heading line.
type Heading struct {
	// Level is the number of '=' fences (2 for "== x ==").
	Level int
	// Title is the raw inner text of the heading, markup preserved.
	Title string

	start int // byte offset of the heading line start
	end   int // byte offset just past the line's trailing newline
}

// Document is a parsed wikitext page.
type Document struct {
	text     string
	headings []*Heading
	root     *Section

	tpls     []*Template
	tplsDone bool
}

// Section is a contiguous span of a document: either the whole page (nil
// heading) or a heading plus everything up to the next heading of equal or
// lower level. Sections borrow the document's text; they are cheap handles.
type Section struct {
	doc     *Document
	heading *Heading
	start   int
	end     int
}

// Parse builds a Document from raw wikitext. It never fails.
func Parse(text string) *Document {
	d := &Document{text: text}
	d.headings = parseHeadings(text)
	d.root = &Section{doc: d, start: 0, end: len(text)}
	return d
}

// Root returns the section spanning the whole document.
func (d *Document) Root() *Section { return d.root }

// Sections delegates to the root section.
func (d *Document) Sections(level int, title *regexp.Regexp, nested bool) []*Section {
	return d.root.Sections(level, title, nested)
}

// Headings delegates to the root section.
func (d *Document) Headings() []*Heading { return d.root.Headings() }

// Templates delegates to the root section.
func (d *Document) Templates(name *regexp.Regexp) []*Template { return d.root.Templates(name) }

// Text returns the raw wikitext of the document.
func (d *Document) Text() string { return d.text }

// Heading returns the section's heading, nil for a whole-document section.
func (s *Section) Heading() *Heading { return s.heading }

// Level returns the heading level of the section, 0 for a whole document.
func (s *Section) Level() int {
	if s.heading == nil {
		return 0
	}
	return s.heading.Level
}

// Text returns the raw wikitext of the section, heading line included.
func (s *Section) Text() string { return s.doc.text[s.start:s.end] }

// Headings returns every heading inside the section, document order.
// The section's own heading is included.
func (s *Section) Headings() []*Heading {
	var out []*Heading
	for _, h := range s.doc.headings {
		if h.start >= s.start && h.end <= s.end {
			out = append(out, h)
		}
	}
	return out
}

// Sections returns subsections whose heading has exactly the given level and
// whose raw title matches the pattern (nil matches any). With nested=true
// matches are collected at every depth; with nested=false only immediate
// children of this section are considered. Each returned section spans from
// its heading to the next heading of equal or lower level. Document order.
func (s *Section) Sections(level int, title *regexp.Regexp, nested bool) []*Section {
	var out []*Section
	for _, h := range s.Headings() {
		if h == s.heading || h.Level != level {
			continue
		}
		if title != nil && !title.MatchString(h.Title) {
			continue
		}
		if !nested && !s.isDirectChild(h) {
			continue
		}
		out = append(out, s.sectionAt(h))
	}
	return out
}

// sectionAt builds the section starting at h, bounded by the enclosing span.
func (s *Section) sectionAt(h *Heading) *Section {
	end := s.end
	for _, g := range s.doc.headings {
		if g.start > h.start && g.start < end && g.Level <= h.Level {
			end = g.start
			break
		}
	}
	return &Section{doc: s.doc, heading: h, start: h.start, end: end}
}

// isDirectChild reports whether no heading between this section's start and h
// encloses h more tightly than the section itself.
func (s *Section) isDirectChild(h *Heading) bool {
	from := s.start
	if s.heading != nil {
		from = s.heading.end
	}
	for _, g := range s.doc.headings {
		if g.start >= from && g.start < h.start && g.Level < h.Level {
			return false
		}
	}
	return true
}

// Templates returns every template inside the section matching the name
// pattern (nil matches any), in document order with nested templates directly
// after their enclosing template. Templates inside heading titles are included.
func (s *Section) Templates(name *regexp.Regexp) []*Template {
	return s.filterTemplates(name, false)
}

// BodyTemplates is Templates with templates inside heading lines excluded.
func (s *Section) BodyTemplates(name *regexp.Regexp) []*Template {
	return s.filterTemplates(name, true)
}

func (s *Section) filterTemplates(name *regexp.Regexp, skipHeadings bool) []*Template {
	var out []*Template
	for _, t := range s.doc.templates() {
		if t.start < s.start || t.start >= s.end {
			continue
		}
		if skipHeadings && s.doc.inHeading(t.start) {
			continue
		}
		if name != nil && !name.MatchString(t.Name) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// PlainText renders the section with markup stripped. nil opts use defaults.
func (s *Section) PlainText(opts *StripOptions) string {
	return StripMarkup(s.Text(), opts)
}

// Outline returns an indented heading tree of the section, one heading per
// line, prefixed with its level. Useful for diagnostics on unfamiliar pages.
func (s *Section) Outline() string {
	headings := s.Headings()
	if len(headings) == 0 {
		return ""
	}
	base := headings[0].Level
	for _, h := range headings {
		if h.Level < base {
			base = h.Level
		}
	}
	var b strings.Builder
	for _, h := range headings {
		fmt.Fprintf(&b, "%s%d %s\n", strings.Repeat("    ", h.Level-base), h.Level, h.Title)
	}
	return b.String()
}

func (d *Document) templates() []*Template {
	if !d.tplsDone {
		d.tpls = scanTemplates(d.text, 0)
		d.tplsDone = true
	}
	return d.tpls
}

func (d *Document) inHeading(pos int) bool {
	for _, h := range d.headings {
		if pos >= h.start && pos < h.end {
			return true
		}
	}
	return false
}

func parseHeadings(text string) []*Heading {
	var out []*Heading
	lineStart := 0
	for lineStart < len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		var next int
		if lineEnd < 0 {
			lineEnd = len(text)
			next = lineEnd
		} else {
			lineEnd += lineStart
			next = lineEnd + 1
		}
		if h := parseHeadingLine(text[lineStart:lineEnd]); h != nil {
			h.start = lineStart
			h.end = next
			out = append(out, h)
		}
		lineStart = next
	}
	return out
}

// parseHeadingLine recognizes "== Title ==" lines. The level is the shorter
// of the two fences; surplus '=' characters belong to the title, matching
// MediaWiki behavior. Lines consisting only of '=' are not headings.
func parseHeadingLine(line string) *Heading {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) < 3 || trimmed[0] != '=' || trimmed[len(trimmed)-1] != '=' {
		return nil
	}
	open := 0
	for open < len(trimmed) && trimmed[open] == '=' {
		open++
	}
	closing := 0
	for closing < len(trimmed) && trimmed[len(trimmed)-1-closing] == '=' {
		closing++
	}
	if open+closing >= len(trimmed) {
		return nil
	}
	level := min(open, closing)
	if level > 6 {
		level = 6
	}
	title := strings.TrimSpace(trimmed[level : len(trimmed)-level])
	return &Heading{Level: level, Title: title}
}
