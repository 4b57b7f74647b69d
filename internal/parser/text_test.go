package parser

import (
	"fmt"
	"strings"
	"testing"
)

func TestTextParser_KeepsSentencesTogether(t *testing.T) {
	input := "TENDER NOTICE\nTender No: MOD/2024/001.\n\nLast Date of Submission: 28/02/2024."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notice.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notice" {
		t.Errorf("expected title %q, got %q", "notice", doc.Title)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	if doc.Text() != input {
		t.Errorf("expected text %q, got %q", input, doc.Text())
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if len(doc.Sections) != 0 {
		t.Errorf("expected 0 sections for empty input, got %d", len(doc.Sections))
	}
}

func TestTextParser_StripsBOMAndInvalidUTF8(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("\ufeffBid \xff due"), "bom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Text(); got != "Bid \ufffd due" {
		t.Errorf("expected cleaned text, got %q", got)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantType string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.MD", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"boq.csv", "*parser.CSVParser"},
		{"notice.htm", "*parser.HTMLParser"},
		{"notice.pdf", "*parser.PDFParser"},
		{"notice.docx", "*parser.DOCXParser"},
	}
	for _, tc := range tests {
		p, err := ForFile(tc.filename, Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.filename, err)
		}
		if got := typeName(p); got != tc.wantType {
			t.Errorf("%s: expected %s, got %s", tc.filename, tc.wantType, got)
		}
		if !IsSupportedExtension(tc.filename) {
			t.Errorf("%s: expected extension to be supported", tc.filename)
		}
	}

	if _, err := ForFile("archive.zip", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("archive.zip") {
		t.Error("expected .zip to be unsupported")
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	p, err := ForFile("x.pdf", Options{PDFFallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.(*PDFParser).FallbackPdftotext {
		t.Error("expected pdftotext fallback to be enabled")
	}
}

func TestBlankPages(t *testing.T) {
	if !blankPages([]string{"", " \n "}) {
		t.Error("expected whitespace pages to count as blank")
	}
	if blankPages([]string{"", "Tender"}) {
		t.Error("expected page with text to not be blank")
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
