package parser

import (
	"strings"
	"testing"
)

func TestPDFParser_InvalidInputWithoutFallback(t *testing.T) {
	p := &PDFParser{}
	_, err := p.Parse(strings.NewReader("definitely not a pdf"), "bad.pdf")
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
	if !strings.Contains(err.Error(), "extract pdf text") {
		t.Errorf("expected wrapped extraction error, got %v", err)
	}
}
