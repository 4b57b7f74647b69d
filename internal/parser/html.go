package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/tenderbrief/internal/document"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLParser handles HTML tender notices. h1-h6 open sections; block
// elements and table rows contribute lines of text.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &document.Document{Title: titleFromFilename(filename)}
	if title := findElement(root, atom.Title); title != nil {
		if t := textContent(title); t != "" {
			doc.Title = t
		}
	}

	var heading string
	var lines []string
	flush := func() {
		doc.Add(heading, strings.Join(lines, "\n"), 0)
		heading, lines = "", nil
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer, atom.Head:
				return
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				flush()
				heading = textContent(n)
				return
			case atom.Tr:
				if row := rowText(n); row != "" {
					lines = append(lines, row)
				}
				return
			case atom.P, atom.Li, atom.Blockquote, atom.Pre, atom.Dd, atom.Dt:
				if t := textContent(n); t != "" {
					lines = append(lines, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	start := findElement(root, atom.Body)
	if start == nil {
		start = root
	}
	walk(start)
	flush()
	return doc, nil
}

// rowText joins the cells of a table row with " | ".
func rowText(tr *html.Node) string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			if t := textContent(c); t != "" {
				cells = append(cells, t)
			}
		}
	}
	return strings.Join(cells, " | ")
}

// textContent concatenates descendant text with whitespace collapsed.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
