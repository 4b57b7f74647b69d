package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	d := docx.New().WithDefaultTheme()
	d.AddParagraph().Style("Heading1").AddText("Notice Inviting Tender")
	d.AddParagraph().AddText("Supply of 50 laptops to the district office.")
	d.AddParagraph().Style("Heading2").AddText("Schedule")

	tbl := d.AddTable(2, 2, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Event")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("Date")
	tbl.TableRows[1].TableCells[0].AddParagraph().AddText("Bid due")
	tbl.TableRows[1].TableCells[1].AddParagraph().AddText("28/02/2024")

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXParser_HeadingsAndTables(t *testing.T) {
	p := &DOCXParser{}
	doc, err := p.Parse(bytes.NewReader(buildDOCX(t)), "nit.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "nit" {
		t.Errorf("expected title %q, got %q", "nit", doc.Title)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(doc.Sections), doc.Sections)
	}
	if doc.Sections[0].Heading != "Notice Inviting Tender" {
		t.Errorf("unexpected first heading %q", doc.Sections[0].Heading)
	}
	if doc.Sections[0].Text != "Supply of 50 laptops to the district office." {
		t.Errorf("unexpected first section text %q", doc.Sections[0].Text)
	}
	if doc.Sections[1].Heading != "Schedule" {
		t.Errorf("unexpected second heading %q", doc.Sections[1].Heading)
	}
	if !strings.Contains(doc.Sections[1].Text, "Bid due | 28/02/2024") {
		t.Errorf("expected table row text, got %q", doc.Sections[1].Text)
	}
}

func TestDOCXParser_InvalidInput(t *testing.T) {
	p := &DOCXParser{}
	if _, err := p.Parse(strings.NewReader("not a zip"), "bad.docx"); err == nil {
		t.Error("expected error for non-docx input")
	}
}
