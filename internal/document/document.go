// Package document wraps a parsed HTML tree with the small query surface
// the extractors need.
package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/domain"
	"golang.org/x/net/html"
)

// Document is a parsed page together with its raw source
type Document struct {
	doc       *goquery.Document
	raw       string
	sourceURL string
}

// Parse parses html. Empty input yields an InvalidDocumentError, a parser
// error is wrapped as ParseFailureError.
func Parse(raw, sourceURL string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.NewInvalidDocumentError(sourceURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, domain.NewParseFailureError(sourceURL, err)
	}

	return &Document{doc: doc, raw: raw, sourceURL: sourceURL}, nil
}

// ParseBytes decodes content to UTF-8 using its declared or sniffed charset
// before parsing.
func ParseBytes(content []byte, sourceURL string) (*Document, error) {
	decoded, err := ConvertToUTF8(content)
	if err != nil {
		return nil, domain.NewParseFailureError(sourceURL, err)
	}
	return Parse(string(decoded), sourceURL)
}

// Raw returns the unparsed source
func (d *Document) Raw() string {
	return d.raw
}

// SourceURL returns the URL the document was fetched from, if known
func (d *Document) SourceURL() string {
	return d.sourceURL
}

// Selection returns the root selection
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Find selects all elements matching selector
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// FindFirst returns the first element matched by the first selector that
// matches anything, in order.
func (d *Document) FindFirst(selectors ...string) (*goquery.Selection, string) {
	return FirstMatch(d.doc.Selection, selectors...)
}

// Title returns the trimmed page title
func (d *Document) Title() string {
	return Text(d.doc.Find("title").First())
}

// FirstMatch returns the first element under sel matched by the first
// selector that matches anything, along with that selector.
func FirstMatch(sel *goquery.Selection, selectors ...string) (*goquery.Selection, string) {
	for _, selector := range selectors {
		if found := sel.Find(selector); found.Length() > 0 {
			return found.First(), selector
		}
	}
	return nil, ""
}

// Text returns the text of sel with whitespace collapsed
func Text(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// Attr returns the trimmed attribute value, or "" when absent
func Attr(sel *goquery.Selection, name string) string {
	if sel == nil {
		return ""
	}
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}

// HasAnyClass reports whether sel carries one of classes
func HasAnyClass(sel *goquery.Selection, classes ...string) bool {
	if sel == nil {
		return false
	}
	for _, class := range classes {
		if sel.HasClass(class) {
			return true
		}
	}
	return false
}

// LinesText returns the text of sel with <br> elements turned into
// newlines. Whitespace is preserved.
func LinesText(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeLines(&b, n)
	}
	return b.String()
}

func writeLines(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeLines(b, c)
	}
}
