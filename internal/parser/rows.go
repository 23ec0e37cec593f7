package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/document"
)

// listTableSelectors locate the main listing table of cgit pages
var listTableSelectors = []string{
	"table.list",
	"table[summary='repository list']",
	"table[summary='log']",
	"table[summary='tree listing']",
	"div.content table",
}

type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionLog
	sectionBranch
	sectionTag
	sectionClone
)

// section is a run of rows under one header row
type section struct {
	kind    sectionKind
	columns columns
	rows    []*goquery.Selection
}

// columns maps lowercased header labels to cell indexes
type columns map[string]int

func (c columns) index(fallback int, labels ...string) int {
	for _, label := range labels {
		if i, ok := c[label]; ok {
			return i
		}
	}
	return fallback
}

func headerColumns(row *goquery.Selection) columns {
	cols := columns{}
	idx := 0
	row.Children().Each(func(_ int, cell *goquery.Selection) {
		label := strings.ToLower(document.Text(cell))
		if label != "" {
			if _, exists := cols[label]; !exists {
				cols[label] = idx
			}
		}
		idx += colspan(cell)
	})
	return cols
}

func colspan(cell *goquery.Selection) int {
	if n, err := strconv.Atoi(document.Attr(cell, "colspan")); err == nil && n > 0 {
		return n
	}
	return 1
}

func isHeaderRow(row *goquery.Selection) bool {
	return row.Children().Filter("th").Length() > 0 && row.Children().Filter("td").Length() == 0
}

func classifySection(cols columns, first string) sectionKind {
	switch {
	case strings.HasPrefix(first, "branch"):
		return sectionBranch
	case strings.HasPrefix(first, "tag"):
		return sectionTag
	case strings.HasPrefix(first, "clone"):
		return sectionClone
	case strings.HasPrefix(first, "age"), hasColumn(cols, "commit message"):
		return sectionLog
	default:
		return sectionNone
	}
}

func hasColumn(cols columns, label string) bool {
	_, ok := cols[label]
	return ok
}

// splitSections groups the rows of every listing table under the header
// row that precedes them. Rows before any header land in a sectionNone
// section with no column map.
func splitSections(tables *goquery.Selection) []section {
	var out []section
	current := section{kind: sectionNone, columns: columns{}}

	tables.Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			// nested tables (diffstat graphs) are not rows of the listing
			if row.ParentsFiltered("table").First().Get(0) != table.Get(0) {
				return
			}
			if isHeaderRow(row) {
				if len(current.rows) > 0 || current.kind != sectionNone {
					out = append(out, current)
				}
				cols := headerColumns(row)
				first := strings.ToLower(document.Text(row.Children().First()))
				current = section{kind: classifySection(cols, first), columns: cols}
				return
			}
			current.rows = append(current.rows, row)
		})
	})

	if len(current.rows) > 0 || current.kind != sectionNone {
		out = append(out, current)
	}
	return out
}

// cellAt returns the cell covering column idx, honouring colspan
func cellAt(row *goquery.Selection, idx int) *goquery.Selection {
	pos := 0
	var found *goquery.Selection
	row.Children().EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		span := colspan(cell)
		if idx >= pos && idx < pos+span {
			found = cell
			return false
		}
		pos += span
		return true
	})
	return found
}

// isSpacerRow reports rows that carry no text at all
func isSpacerRow(row *goquery.Selection) bool {
	return strings.TrimSpace(strings.ReplaceAll(row.Text(), " ", "")) == ""
}

// isMoreRow reports the "[...]" continuation rows cgit adds to truncated sections
func isMoreRow(row *goquery.Selection) bool {
	text := document.Text(row)
	return text == "[...]" || text == "..."
}

// ageDate reads the exact timestamp from an age span title, falling back to
// its text or the given fallback cell text.
func (p *Parser) ageDate(scope *goquery.Selection, fallback string) (string, bool) {
	span := scope.Find("span[class^='age'], span.age, time").First()
	if span.Length() > 0 {
		if title := document.Attr(span, "title"); title != "" {
			return title, true
		}
		if dt := document.Attr(span, "datetime"); dt != "" {
			return dt, true
		}
		if text := document.Text(span); text != "" {
			return text, true
		}
	}
	fallback = strings.TrimSpace(fallback)
	return fallback, fallback != ""
}

// normalizeDescription maps placeholder descriptions to ""
func normalizeDescription(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case lower == "", lower == "[no description]", lower == "no description", lower == "-":
		return ""
	case strings.HasPrefix(lower, "unnamed repository"):
		return ""
	}
	return s
}
