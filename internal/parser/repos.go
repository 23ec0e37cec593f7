package parser

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

const componentRepos = "repos"

// Repositories extracts the project list of a cgit index page in page
// order. Category rows label the projects that follow them.
func (p *Parser) Repositories(raw, sourceURL string) ([]domain.Project, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}

	table, selector := doc.FindFirst(listTableSelectors...)
	if table == nil {
		p.report(doc, componentRepos, "table.list", "no repository table found")
		return []domain.Project{}, nil
	}

	projects := []domain.Project{}
	category := ""
	cols := columns{}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if isHeaderRow(row) {
			cols = headerColumns(row)
			return
		}
		if section := row.Find("td.reposection"); section.Length() > 0 {
			category = document.Text(section)
			return
		}
		if isSpacerRow(row) {
			return
		}

		project, ok := p.projectFromRow(doc, row, cols, sourceURL)
		if !ok {
			return
		}
		project.Category = category
		projects = append(projects, project)
	})

	if len(projects) == 0 {
		p.report(doc, componentRepos, selector, "repository table has no rows")
	}
	return projects, nil
}

func (p *Parser) projectFromRow(doc *document.Document, row *goquery.Selection, cols columns, sourceURL string) (domain.Project, bool) {
	nameCell := row.Find("td.toplevel-repo, td.sublevel-repo").First()
	if nameCell.Length() == 0 {
		nameCell = cellAt(row, cols.index(0, "name"))
	}
	if nameCell == nil {
		return domain.Project{}, false
	}

	link := nameCell.Find("a[href]").First()
	href := document.Attr(link, "href")
	repoPath := strings.Trim(trimMountPrefix(hrefPath(href), sourceURL), "/")
	if repoPath == "" {
		p.report(doc, componentRepos, "td a[href]", "skipping row without repository path",
			"text", document.Text(row))
		return domain.Project{}, false
	}

	name := document.Text(link)
	if name == "" {
		name = document.Attr(link, "title")
	}
	if name == "" {
		name = path.Base(repoPath)
	}

	project := domain.Project{
		Name: name,
		Path: repoPath,
	}

	if cell := cellAt(row, cols.index(1, "description")); cell != nil {
		project.Description = normalizeDescription(document.Text(cell))
	}
	if idx, ok := cols["owner"]; ok {
		if cell := cellAt(row, idx); cell != nil {
			project.Owner = document.Text(cell)
		}
	}

	idleText := ""
	if cell := cellAt(row, cols.index(-1, "idle", "age", "last change")); cell != nil {
		idleText = document.Text(cell)
	}
	if s, ok := p.ageDate(row, idleText); ok {
		project.LastActivity = p.dates.ParsePtr(s)
		if project.LastActivity == nil {
			p.report(doc, componentRepos, "span.age", "unparseable idle time", "value", s)
		}
	}

	return project, true
}
