package converter

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// MarkdownConverter converts sanitized about HTML to Markdown
type MarkdownConverter struct {
	domain string
}

// MarkdownOptions contains options for Markdown conversion
type MarkdownOptions struct {
	// Domain resolves links that are still relative after sanitizing
	Domain string
}

// NewMarkdownConverter creates a new Markdown converter
func NewMarkdownConverter(opts MarkdownOptions) *MarkdownConverter {
	return &MarkdownConverter{
		domain: opts.Domain,
	}
}

// Convert converts HTML to Markdown
func (c *MarkdownConverter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	var opts []converter.ConvertOptionFunc
	if c.domain != "" {
		opts = append(opts, converter.WithDomain(c.domain))
	}

	markdown, err := md.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return c.cleanMarkdown(markdown), nil
}

// cleanMarkdown cleans up the converted markdown
func (c *MarkdownConverter) cleanMarkdown(markdown string) string {
	// collapse runs of more than two blank lines
	for strings.Contains(markdown, "\n\n\n\n") {
		markdown = strings.ReplaceAll(markdown, "\n\n\n\n", "\n\n\n")
	}

	return strings.TrimSpace(markdown)
}
