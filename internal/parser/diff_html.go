package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

const componentDiff = "diff"

// formattedDiffLines are the per-line containers of cgit's unified view
const formattedDiffLines = "div.head, div.hunk, div.ctx, div.add, div.del"

// diffSource is a parsed diff together with the element it came from,
// which anchors file path recovery.
type diffSource struct {
	files  []domain.DiffFile
	anchor *goquery.Selection
}

// Diff extracts the per-file changes from a diff, patch or commit page, or
// from plain unified diff text.
func (p *Parser) Diff(raw, sourceURL string) ([]domain.DiffFile, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}
	files, ok := p.diffFrom(doc)
	if !ok {
		return nil, domain.NewMissingElementError("table.diff", sourceURL)
	}
	return files, nil
}

func (p *Parser) diffFrom(doc *document.Document) ([]domain.DiffFile, bool) {
	src, ok := firstOf(doc,
		formattedDiff,
		rawTextDiff,
		tableDiff,
		preDiff,
	)
	if !ok {
		return nil, false
	}
	for i := range src.files {
		src.files[i] = p.resolvePaths(doc, src.anchor, src.files[i])
	}
	return src.files, true
}

// formattedDiff rebuilds the unified text from cgit's syntax-coloured divs
func formattedDiff(doc *document.Document) (diffSource, bool) {
	table, _ := doc.FindFirst("table.diff")
	if table == nil || table.Find(formattedDiffLines).Length() == 0 {
		return diffSource{}, false
	}

	var b strings.Builder
	table.Find(formattedDiffLines).Each(func(_ int, div *goquery.Selection) {
		b.WriteString(strings.TrimSuffix(document.LinesText(div), "\n"))
		b.WriteByte('\n')
	})

	files := parseUnified(b.String())
	if len(files) == 0 {
		return diffSource{}, false
	}
	return diffSource{files: files, anchor: table}, true
}

// rawTextDiff handles pages that are not HTML at all, such as /patch/ output
func rawTextDiff(doc *document.Document) (diffSource, bool) {
	raw := doc.Raw()
	if looksLikeHTML(raw) || !containsUnifiedDiff(raw) {
		return diffSource{}, false
	}
	files := parseUnified(raw)
	if len(files) == 0 {
		return diffSource{}, false
	}
	return diffSource{files: files, anchor: doc.Selection()}, true
}

// tableDiff reads diffs rendered one table row per line: a hunk row resets
// the counters, other rows carry old number, new number and content.
func tableDiff(doc *document.Document) (diffSource, bool) {
	var src diffSource
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if document.HasAnyClass(table, "diffstat", "commit-info", "list") || !isLineTable(table) {
			return true
		}
		if files := parseUnified(tableLines(table)); len(files) > 0 {
			src = diffSource{files: files, anchor: table}
			return false
		}
		return true
	})
	return src, src.files != nil
}

func isLineTable(table *goquery.Selection) bool {
	if table.Find("tr.add, tr.del, tr.hunk").Length() > 0 {
		return true
	}
	hunk := false
	table.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		hunk = strings.HasPrefix(document.Text(cell), "@@")
		return !hunk
	})
	return hunk
}

// tableLines turns line rows back into unified diff text. Rows with
// separate number cells carry content without its marker; single-cell rows
// keep the marker.
func tableLines(table *goquery.Selection) string {
	var b strings.Builder
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.ParentsFiltered("table").First().Get(0) != table.Get(0) {
			return
		}
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}
		text := strings.TrimSpace(document.Text(row))

		switch {
		case row.HasClass("head") || strings.HasPrefix(text, "diff --git "):
			b.WriteString(strings.TrimRight(document.LinesText(row), "\n"))
		case row.HasClass("hunk") || hunkCell(cells) != nil:
			cell := hunkCell(cells)
			if cell == nil {
				cell = cells.Last()
			}
			b.WriteString(document.Text(cell))
		default:
			content := strings.TrimSuffix(document.LinesText(cells.Last()), "\n")
			if cells.Length() < 3 {
				b.WriteString(content)
				break
			}
			switch {
			case row.HasClass("add"):
				b.WriteByte('+')
			case row.HasClass("del"):
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(content)
		}
		b.WriteByte('\n')
	})
	return b.String()
}

func hunkCell(cells *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if strings.HasPrefix(document.Text(cell), "@@") {
			found = cell
			return false
		}
		return true
	})
	return found
}

// preDiff searches <pre> blocks for embedded unified diff text
func preDiff(doc *document.Document) (diffSource, bool) {
	var src diffSource
	doc.Find("pre").EachWithBreak(func(_ int, pre *goquery.Selection) bool {
		text := document.LinesText(pre)
		if !containsUnifiedDiff(text) {
			return true
		}
		if files := parseUnified(text); len(files) > 0 {
			src = diffSource{files: files, anchor: pre}
			return false
		}
		return true
	})
	return src, src.files != nil
}

func looksLikeHTML(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "<")
}
