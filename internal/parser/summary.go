package parser

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

const componentSummary = "summary"

// Summary extracts a repository overview page
func (p *Parser) Summary(raw, sourceURL string) (*domain.RepositorySummary, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}

	name, _ := firstOf(doc, summaryNameStrategies(sourceURL)...)
	summary := &domain.RepositorySummary{
		Name:      name,
		CloneURLs: cloneURLs(doc),
	}

	if sub, _ := doc.FindFirst("table#header td.sub", "td.sub", "div.description"); sub != nil {
		summary.Description = normalizeDescription(document.Text(sub))
	}

	sections := splitSections(doc.Find("table.list"))
	for _, sec := range sections {
		if sec.kind != sectionLog {
			continue
		}
		for _, row := range sec.rows {
			if isSpacerRow(row) || isMoreRow(row) {
				continue
			}
			if commit, ok := p.commitFromRow(doc, row, sec.columns); ok {
				summary.LastCommit = &commit
				break
			}
		}
		if summary.LastCommit != nil {
			break
		}
	}

	refs := p.refsFrom(doc, sections)
	summary.BranchCount = len(refs.Branches)
	summary.TagCount = len(refs.Tags)

	if summary.Name == "" {
		p.report(doc, componentSummary, "td.main", "repository name not found")
	}
	return summary, nil
}

func summaryNameStrategies(sourceURL string) []strategy[string] {
	return []strategy[string]{
		// cgit prints "index : repo" with the repository as the last link
		func(doc *document.Document) (string, bool) {
			sel, _ := doc.FindFirst("table#header td.main", "td.main")
			if sel == nil {
				return "", false
			}
			name := document.Text(sel.Find("a").Last())
			return name, name != ""
		},
		func(doc *document.Document) (string, bool) {
			title := doc.Title()
			if before, _, found := strings.Cut(title, " - "); found {
				title = before
			}
			title = strings.TrimSpace(title)
			return title, title != ""
		},
		func(*document.Document) (string, bool) {
			p := strings.Trim(hrefPath(sourceURL), "/")
			if p == "" {
				return "", false
			}
			return path.Base(p), true
		},
	}
}

// cloneURLs collects vcs-git links in page order, without duplicates
func cloneURLs(doc *document.Document) []domain.CloneURL {
	urls := []domain.CloneURL{}
	seen := map[string]bool{}

	doc.Find("a[rel='vcs-git'], link[rel='vcs-git']").Each(func(_ int, sel *goquery.Selection) {
		addr := document.Attr(sel, "href")
		if addr == "" {
			addr = document.Text(sel)
		}
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		urls = append(urls, domain.CloneURL{URL: addr, Protocol: cloneProtocol(addr)})
	})
	return urls
}

func cloneProtocol(addr string) domain.CloneProtocol {
	lower := strings.ToLower(addr)
	switch {
	case strings.HasPrefix(lower, "git://"):
		return domain.CloneGit
	case strings.HasPrefix(lower, "ssh://"), strings.HasPrefix(lower, "git+ssh://"):
		return domain.CloneSSH
	case strings.Contains(lower, "://"):
		return domain.CloneHTTPS
	case strings.Contains(lower, "@") && strings.Contains(lower, ":"):
		// scp-like user@host:path
		return domain.CloneSSH
	default:
		return domain.CloneHTTPS
	}
}
