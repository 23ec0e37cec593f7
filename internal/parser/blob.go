package parser

import (
	"strings"

	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

const componentBlob = "blob"

var blobSelectors = []string{
	"table.blob td.lines pre",
	"table.blob td.lines",
	"table.blob pre",
}

// Blob extracts the file content of a file view page
func (p *Parser) Blob(raw, sourceURL string) (*domain.Blob, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}

	blob := &domain.Blob{Path: blobPath(doc, sourceURL)}

	if doc.Find("table.bin-blob").Length() > 0 {
		blob.Binary = true
		return blob, nil
	}

	sel, _ := doc.FindFirst(blobSelectors...)
	if sel == nil {
		return nil, domain.NewMissingElementError("table.blob", sourceURL)
	}
	blob.Content = strings.TrimSuffix(document.LinesText(sel), "\n")
	size := int64(len(blob.Content))
	blob.Size = &size

	if blob.Path == "" {
		p.report(doc, componentBlob, "div.path", "blob path not found")
	}
	return blob, nil
}

// blobPath prefers the path bar, then the path of the page URL
func blobPath(doc *document.Document, sourceURL string) string {
	if p := breadcrumbPath(doc); p != "" {
		return p
	}
	if p := queryParam(sourceURL, "path"); p != "" {
		return strings.Trim(p, "/")
	}
	return pathAfterSegment(sourceURL, "/tree/", "/blob/", "/plain/")
}
