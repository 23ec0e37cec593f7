package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

var (
	minusPathPattern = regexp.MustCompile(`^---\s+(?:a/)?(\S+)`)
	plusPathPattern  = regexp.MustCompile(`^\+\+\+\s+(?:b/)?(\S+)`)
)

// resolvePaths fills in the path of a file the diff text did not name
func (p *Parser) resolvePaths(doc *document.Document, anchor *goquery.Selection, f domain.DiffFile) domain.DiffFile {
	if f.NewPath != "" {
		return f
	}

	path, ok := firstOf(doc, pathRecoveryStrategies(anchor)...)
	if !ok {
		path = domain.UnknownPath
		p.report(doc, componentDiff, "table.diff", "diff file path not found, using placeholder")
	}

	f.NewPath = path
	if f.ChangeType != domain.ChangeAdded {
		f.OldPath = path
	}
	return f
}

// pathRecoveryStrategies lists the places a diff page may name its file,
// most specific first.
func pathRecoveryStrategies(anchor *goquery.Selection) []strategy[string] {
	return []strategy[string]{
		pathFromBreadcrumb,
		pathFromTitle,
		func(*document.Document) (string, bool) { return pathFromPrecedingSiblings(anchor) },
		func(*document.Document) (string, bool) { return pathFromLinks(anchor) },
	}
}

func pathFromBreadcrumb(doc *document.Document) (string, bool) {
	p := breadcrumbPath(doc)
	return p, p != ""
}

// pathFromTitle reads "<repo> - <path>" style titles. The remainder must
// look like a path, not prose.
func pathFromTitle(doc *document.Document) (string, bool) {
	_, rest, found := strings.Cut(doc.Title(), "-")
	if !found {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" || strings.ContainsAny(rest, " \t") || !strings.ContainsAny(rest, "./") {
		return "", false
	}
	return strings.Trim(rest, "/"), true
}

// pathFromPrecedingSiblings scans header-like elements before the diff,
// nearest first, then those before its parent.
func pathFromPrecedingSiblings(anchor *goquery.Selection) (string, bool) {
	if anchor == nil || anchor.Length() == 0 {
		return "", false
	}
	for _, scope := range []*goquery.Selection{anchor, anchor.Parent()} {
		var found string
		scope.PrevAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if p, ok := pathFromHeaderText(document.LinesText(sib)); ok {
				found = p
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// pathFromHeaderText matches the last line of text that names a path
func pathFromHeaderText(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if m := gitHeaderPattern.FindStringSubmatch(line); m != nil {
			return m[2], true
		}
		if m := plusPathPattern.FindStringSubmatch(line); m != nil && m[1] != "/dev/null" {
			return m[1], true
		}
		if m := minusPathPattern.FindStringSubmatch(line); m != nil && m[1] != "/dev/null" {
			return m[1], true
		}
		if !strings.ContainsAny(line, " \t") && strings.Contains(line, "/") && !isHTTPURL(line) {
			return strings.Trim(line, "/"), true
		}
		for _, word := range strings.Fields(line) {
			if !strings.Contains(word, "/") || isHTTPURL(word) {
				continue
			}
			parts := strings.Split(strings.Trim(word, "/"), "/")
			if last := parts[len(parts)-1]; last != "" {
				return last, true
			}
		}
	}
	return "", false
}

// pathFromLinks reads the path out of a blob or tree link within the diff
func pathFromLinks(anchor *goquery.Selection) (string, bool) {
	if anchor == nil {
		return "", false
	}
	var found string
	anchor.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := document.Attr(a, "href")
		if p := queryParam(href, "path"); p != "" {
			found = strings.Trim(p, "/")
			return false
		}
		if p := pathAfterSegment(href, "/blob/", "/tree/", "/plain/"); p != "" {
			found = p
			return false
		}
		return true
	})
	return found, found != ""
}
