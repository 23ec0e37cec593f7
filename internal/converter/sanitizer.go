package converter

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TagsToRemove are HTML tags that never belong in rendered about content
var TagsToRemove = []string{
	"script",
	"style",
	"noscript",
	"iframe",
	"object",
	"embed",
	"applet",
}

// Sanitizer cleans rendered README/about HTML
type Sanitizer struct {
	baseURL string
}

// SanitizerOptions contains options for the sanitizer
type SanitizerOptions struct {
	// BaseURL resolves relative links and image sources. Left empty,
	// URLs are kept as they are.
	BaseURL string
}

// NewSanitizer creates a new sanitizer
func NewSanitizer(opts SanitizerOptions) *Sanitizer {
	return &Sanitizer{
		baseURL: opts.BaseURL,
	}
}

// Sanitize cleans an HTML fragment and returns its cleaned markup
func (s *Sanitizer) Sanitize(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	body := doc.Find("body")
	s.sanitizeSelection(body)

	result, err := body.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// SanitizeSelection cleans a selection in place and returns its inner markup
func (s *Sanitizer) SanitizeSelection(sel *goquery.Selection) (string, error) {
	if sel == nil || sel.Length() == 0 {
		return "", nil
	}

	// work on a copy so the caller's document stays untouched
	clone := sel.First().Clone()
	s.sanitizeSelection(clone)

	result, err := clone.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

func (s *Sanitizer) sanitizeSelection(sel *goquery.Selection) {
	for _, tag := range TagsToRemove {
		findWithRoot(sel, tag).Remove()
	}

	// inline event handlers travel with otherwise harmless tags
	findWithRoot(sel, "*").Each(func(_ int, node *goquery.Selection) {
		var handlers []string
		for _, attr := range node.Nodes[0].Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				handlers = append(handlers, attr.Key)
			}
		}
		for _, key := range handlers {
			node.RemoveAttr(key)
		}
	})

	if s.baseURL != "" {
		s.normalizeURLsFromSelection(sel)
	}
}

func (s *Sanitizer) normalizeURLsFromSelection(sel *goquery.Selection) {
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return
	}

	findWithRoot(sel, "a[href]").Each(func(_ int, node *goquery.Selection) {
		if href, exists := node.Attr("href"); exists {
			node.SetAttr("href", resolveURL(base, href))
		}
	})

	findWithRoot(sel, "[src]").Each(func(_ int, node *goquery.Selection) {
		if src, exists := node.Attr("src"); exists {
			node.SetAttr("src", resolveURL(base, src))
		}
	})

	findWithRoot(sel, "[srcset]").Each(func(_ int, node *goquery.Selection) {
		if srcset, exists := node.Attr("srcset"); exists {
			node.SetAttr("srcset", normalizeSrcset(base, srcset))
		}
	})
}

// resolveURL resolves a relative URL against a base URL. Fragments and
// non-navigational schemes are kept as they are.
func resolveURL(base *url.URL, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "data:") {
		return ref
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(ref)), "javascript:") {
		return "#"
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return base.ResolveReference(refURL).String()
}

// normalizeSrcset normalizes URLs in srcset attribute
func normalizeSrcset(base *url.URL, srcset string) string {
	parts := strings.Split(srcset, ",")
	for i, part := range parts {
		tokens := strings.Fields(strings.TrimSpace(part))
		if len(tokens) > 0 {
			tokens[0] = resolveURL(base, tokens[0])
			parts[i] = strings.Join(tokens, " ")
		}
	}
	return strings.Join(parts, ", ")
}

// findWithRoot matches selector against sel itself and its descendants
func findWithRoot(sel *goquery.Selection, selector string) *goquery.Selection {
	return sel.Filter(selector).AddSelection(sel.Find(selector))
}
