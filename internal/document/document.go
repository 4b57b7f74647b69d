// Package document holds the plain-text form of an uploaded file.
package document

import "strings"

// Document is a parsed file: a title plus its sections in reading order.
type Document struct {
	Title    string
	Sections []Section
}

// Section is a run of text under an optional heading.
type Section struct {
	Heading string
	Text    string
	Page    int // 1-based source page, 0 if unknown
}

// Add appends a section, skipping ones with neither heading nor text.
func (d *Document) Add(heading, text string, page int) {
	heading = strings.TrimSpace(heading)
	text = strings.TrimSpace(text)
	if heading == "" && text == "" {
		return
	}
	d.Sections = append(d.Sections, Section{Heading: heading, Text: text, Page: page})
}

// Text flattens the document into the text handed to the summarizer.
// Headings sit on their own line above their section text.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, s := range d.Sections {
		for _, part := range []string{s.Heading, s.Text} {
			if part == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(part)
		}
	}
	return sb.String()
}

// Pages reports the highest page number seen, 0 for unpaginated sources.
func (d *Document) Pages() int {
	n := 0
	for _, s := range d.Sections {
		n = max(n, s.Page)
	}
	return n
}
