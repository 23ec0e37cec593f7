package parser

import (
	"github.com/quantmind-br/cgitscrape/internal/converter"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

// aboutSelectors locate the rendered README, most specific first
var aboutSelectors = []string{
	"div#summary",
	"div.markdown-body",
	"div#readme",
	"div.content",
}

// About extracts the sanitized about/README body. A page without one
// yields empty content, not an error.
func (p *Parser) About(raw, sourceURL string) (*domain.AboutContent, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}

	sel, _ := doc.FindFirst(aboutSelectors...)
	if sel == nil {
		return &domain.AboutContent{}, nil
	}

	sanitizer := converter.NewSanitizer(converter.SanitizerOptions{BaseURL: sourceURL})
	html, err := sanitizer.SanitizeSelection(sel)
	if err != nil {
		return nil, domain.NewParseFailureError(sourceURL, err)
	}
	return &domain.AboutContent{HTML: html}, nil
}
