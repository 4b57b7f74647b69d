package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/tenderbrief/internal/document"
)

// TextParser handles plain text files. The content stays in a single section
// so sentence boundaries survive for the summary.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\ufffd")
	}
	text = strings.TrimPrefix(text, "\ufeff")

	doc := &document.Document{Title: titleFromFilename(filename)}
	doc.Add("", text, 0)
	return doc, nil
}
