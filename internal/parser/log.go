package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

const componentLog = "log"

// pagerLabels are the texts of the link leading to the next log page
var pagerLabels = []string{"[next]", "[...]", "next", "next »", "»", "older", "older »"}

// CommitLog extracts the commit summaries of a log page and its pagination
// cursor.
func (p *Parser) CommitLog(raw, sourceURL string) (*domain.CommitLog, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}

	result := &domain.CommitLog{Commits: []domain.CommitSummary{}}

	for _, sec := range splitSections(doc.Find("table.list, table[summary='log']")) {
		if sec.kind != sectionLog && sec.kind != sectionNone {
			continue
		}
		for _, row := range sec.rows {
			if row.Find("td.logmsg").Length() > 0 || isSpacerRow(row) || isMoreRow(row) {
				continue
			}
			if commit, ok := p.commitFromRow(doc, row, sec.columns); ok {
				result.Commits = append(result.Commits, commit)
			}
		}
	}

	result.HasMore, result.NextOffset = p.pagination(doc)
	return result, nil
}

// commitFromRow turns one log row into a summary. Rows without a commit
// link are not commits and are skipped.
func (p *Parser) commitFromRow(doc *document.Document, row *goquery.Selection, cols columns) (domain.CommitSummary, bool) {
	link := commitLink(row)
	if link == nil {
		return domain.CommitSummary{}, false
	}

	sha := queryParam(document.Attr(link, "href"), "id")
	if sha == "" {
		p.report(doc, componentLog, "a[href*='id=']", "skipping log row without commit id",
			"text", document.Text(row))
		return domain.CommitSummary{}, false
	}

	subject := document.Text(link)
	if title := document.Attr(link, "title"); len(title) > len(subject) {
		subject = title
	}

	message := subject
	if body := logMessageBody(row); body != "" && body != subject {
		if strings.HasPrefix(body, subject) {
			message = body
		} else {
			message = subject + "\n\n" + body
		}
	}

	commit := domain.NewCommitSummary(sha, message)
	commit.Decorations = decorations(row)

	if cell := cellAt(row, cols.index(2, "author")); cell != nil {
		commit.AuthorName = document.Text(cell)
		commit.AuthorEmail = emailFrom(cell)
	}

	ageText := ""
	if cell := cellAt(row, cols.index(0, "age")); cell != nil {
		ageText = document.Text(cell)
	}
	if s, ok := p.ageDate(row, ageText); ok {
		if t, parsed := p.dates.Parse(s); parsed {
			commit.Date = t
		}
	}
	if commit.Date.IsZero() {
		// The record requires a timestamp; "now" is the documented last
		// resort when the row shows none we can read.
		commit.Date = p.now()
		p.report(doc, componentLog, "span.age", "commit date unknown, defaulting to now", "sha", sha)
	}

	return commit, true
}

// commitLink finds the anchor pointing at a commit view
func commitLink(row *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if a.ParentsFiltered("span.decoration").Length() > 0 {
			return true
		}
		href := document.Attr(a, "href")
		if strings.Contains(href, "/commit/") && queryParam(href, "id") != "" {
			found = a
			return false
		}
		return true
	})
	if found != nil {
		return found
	}

	row.Find("a[href*='id=']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if a.ParentsFiltered("span.decoration").Length() > 0 {
			return true
		}
		found = a
		return false
	})
	return found
}

// logMessageBody returns the message body cgit shows in a follow-up row
// when showmsg is enabled.
func logMessageBody(row *goquery.Selection) string {
	next := row.Next()
	if next.Length() == 0 {
		return ""
	}
	cell := next.Find("td.logmsg").First()
	if cell.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(document.LinesText(cell))
}

func decorations(row *goquery.Selection) []string {
	var out []string
	row.Find("span.decoration").Children().Each(func(_ int, deco *goquery.Selection) {
		if text := document.Text(deco); text != "" {
			out = append(out, text)
		}
	})
	if len(out) == 0 {
		row.Find("a[class$='-deco'], span[class$='-deco']").Each(func(_ int, deco *goquery.Selection) {
			if text := document.Text(deco); text != "" {
				out = append(out, text)
			}
		})
	}
	return out
}

func emailFrom(cell *goquery.Selection) string {
	if a := cell.Find("a[href^='mailto:']").First(); a.Length() > 0 {
		return strings.TrimPrefix(document.Attr(a, "href"), "mailto:")
	}
	var email string
	cell.Find("[title]").AddSelection(cell).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		title := document.Attr(el, "title")
		if strings.Contains(title, "@") {
			email = strings.Trim(title, "<> ")
			return false
		}
		return true
	})
	return email
}

// pagination locates the "next page" link. A link without an ofs parameter
// still signals more commits, with an unknown cursor.
func (p *Parser) pagination(doc *document.Document) (bool, *int) {
	var next *goquery.Selection
	for _, scope := range pagerScopes {
		if next = pagerLink(doc.Find(scope)); next != nil {
			break
		}
	}
	if next == nil {
		return false, nil
	}

	if ofs, ok := intParam(document.Attr(next, "href"), "ofs"); ok {
		return true, &ofs
	}
	p.report(doc, componentLog, "a[href*='ofs=']", "pager link without ofs parameter")
	return true, nil
}

// pagerScopes are searched in order; a later scope is only consulted when
// the earlier ones hold no pager link.
var pagerScopes = []string{
	"ul.pager a",
	"div.pager a",
	"table.list tr:last-child a",
}

func pagerLink(anchors *goquery.Selection) *goquery.Selection {
	var next *goquery.Selection
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if inCommitRow(a) {
			return true
		}
		label := strings.ToLower(document.Text(a))
		for _, candidate := range pagerLabels {
			if label == candidate {
				next = a
				return false
			}
		}
		return true
	})
	return next
}

// inCommitRow reports anchors that sit in a log row linking to a commit,
// such as a subject that happens to read "next".
func inCommitRow(a *goquery.Selection) bool {
	row := a.Closest("tr")
	return row.Length() > 0 && commitLink(row) != nil
}
