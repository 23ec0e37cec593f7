package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

const componentCommit = "commit"

var (
	signaturePattern = regexp.MustCompile(`^(.*?)\s*<([^>]*)>\s*(.*)$`)
	changeIDPattern  = regexp.MustCompile(`(?m)^\s*Change-Id:\s*(\S+)\s*$`)
	statCountPattern = regexp.MustCompile(`(\d+)\s+(files?|insertions?|deletions?)`)
	widthPattern     = regexp.MustCompile(`width:\s*([\d.]+)%`)
)

// commitInfoSelectors locate cgit's commit metadata table
var commitInfoSelectors = []string{
	"table.commit-info",
	"table[summary='commit info']",
}

// diffstatClasses maps the diffstat file cell classes to change types
var diffstatClasses = []struct {
	class      string
	changeType domain.ChangeType
}{
	{"add", domain.ChangeAdded},
	{"del", domain.ChangeDeleted},
	{"mov", domain.ChangeRenamed},
	{"cpy", domain.ChangeCopied},
	{"upd", domain.ChangeModified},
}

// Commit extracts the full metadata of a single commit page. The commit
// info table is required; everything else degrades to empty values.
func (p *Parser) Commit(raw, sourceURL string) (*domain.CommitDetail, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}

	info, _ := doc.FindFirst(commitInfoSelectors...)
	if info == nil {
		return nil, domain.NewMissingElementError(commitInfoSelectors[0], sourceURL)
	}

	detail := &domain.CommitDetail{
		Parents:      []string{},
		ChangedFiles: []domain.ChangedFile{},
	}

	info.Find("tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(document.Text(row.Find("th").First()))
		switch label {
		case "author":
			detail.Author = p.signatureFromRow(doc, row)
		case "committer":
			sig := p.signatureFromRow(doc, row)
			detail.Committer = &sig
		case "commit":
			detail.SHA = oidFromRow(row)
		case "tree":
			detail.Tree = oidFromRow(row)
		case "parent":
			if sha := oidFromRow(row); sha != "" {
				detail.Parents = append(detail.Parents, sha)
			}
		}
	})

	if detail.SHA == "" {
		detail.SHA = queryParam(sourceURL, "id")
	}
	if detail.SHA == "" {
		p.report(doc, componentCommit, "td.oid", "commit id not found")
	}

	detail.Message = commitMessage(doc)
	if m := changeIDPattern.FindAllStringSubmatch(detail.Message, -1); len(m) > 0 {
		detail.ChangeID = m[len(m)-1][1]
	}

	if files, found := p.diffFrom(doc); found {
		detail.Diff = files
	}

	detail.ChangedFiles = p.changedFiles(doc, detail.Diff)
	detail.Stats = diffStats(doc, detail.ChangedFiles)

	return detail, nil
}

func (p *Parser) signatureFromRow(doc *document.Document, row *goquery.Selection) domain.Signature {
	cells := row.Find("td")
	who := document.Text(cells.First())

	sig := domain.Signature{Name: who}
	if m := signaturePattern.FindStringSubmatch(who); m != nil {
		sig.Name = strings.TrimSpace(m[1])
		sig.Email = strings.TrimSpace(m[2])
	}

	dateText := ""
	if cells.Length() > 1 {
		dateText = document.Text(cells.Last())
	}
	if t, ok := p.dates.Parse(dateText); ok {
		sig.Date = t
	} else {
		// A signature always carries a timestamp; "now" is the documented
		// last resort for pages that show none we can read.
		sig.Date = p.now()
		p.report(doc, componentCommit, "td.right", "signature date unknown, defaulting to now", "value", dateText)
	}
	return sig
}

func oidFromRow(row *goquery.Selection) string {
	cell := row.Find("td.oid, td.sha1").First()
	if cell.Length() == 0 {
		cell = row.Find("td").First()
	}
	link := cell.Find("a[href*='id=']").First()
	if sha := queryParam(document.Attr(link, "href"), "id"); sha != "" {
		return sha
	}
	if text := document.Text(cell.Find("a").First()); isHex(text) {
		return text
	}
	fields := strings.Fields(document.Text(cell))
	if len(fields) > 0 && isHex(fields[0]) {
		return fields[0]
	}
	return ""
}

func isHex(s string) bool {
	if len(s) < 4 {
		return false
	}
	return strings.Trim(strings.ToLower(s), "0123456789abcdef") == ""
}

// commitMessage joins subject and body. A body that already starts with the
// subject is used as is.
func commitMessage(doc *document.Document) string {
	subjectSel, _ := doc.FindFirst("div.commit-subject")
	subject := ""
	if subjectSel != nil {
		// drop decoration labels cgit appends to the subject
		clone := subjectSel.Clone()
		clone.Find("span.decoration").Remove()
		subject = strings.TrimSpace(document.Text(clone))
	}

	body := ""
	if bodySel, _ := doc.FindFirst("div.commit-msg"); bodySel != nil {
		body = strings.TrimSpace(document.LinesText(bodySel))
	}

	switch {
	case body == "":
		return subject
	case subject == "", strings.HasPrefix(body, subject):
		return body
	default:
		return subject + "\n\n" + body
	}
}

// changedFiles reads the diffstat table. Per-file counts come from the
// embedded diff when present, otherwise from the graph widths.
func (p *Parser) changedFiles(doc *document.Document, diff []domain.DiffFile) []domain.ChangedFile {
	files := []domain.ChangedFile{}

	byPath := make(map[string]*domain.DiffFile, len(diff))
	for i := range diff {
		byPath[diff[i].NewPath] = &diff[i]
		if diff[i].OldPath != "" {
			if _, exists := byPath[diff[i].OldPath]; !exists {
				byPath[diff[i].OldPath] = &diff[i]
			}
		}
	}

	table, _ := doc.FindFirst("table.diffstat", "table[summary='diffstat']")
	if table == nil {
		for _, f := range diff {
			files = append(files, domain.ChangedFile{
				Path:       f.NewPath,
				OldPath:    renamedFrom(f),
				ChangeType: f.ChangeType,
				Additions:  f.Additions(),
				Deletions:  f.Deletions(),
			})
		}
		return files
	}

	table.ChildrenFiltered("tbody").AddSelection(table).ChildrenFiltered("tr").Each(func(_ int, row *goquery.Selection) {
		fileCell := row.Find("td.add, td.del, td.upd, td.mov, td.cpy").First()
		if fileCell.Length() == 0 {
			return
		}

		cf := domain.ChangedFile{ChangeType: domain.ChangeModified}
		for _, dc := range diffstatClasses {
			if fileCell.HasClass(dc.class) {
				cf.ChangeType = dc.changeType
				break
			}
		}

		name := document.Text(fileCell)
		if before, after, found := strings.Cut(name, "=>"); found {
			cf.OldPath = strings.TrimSpace(before)
			name = after
		}
		cf.Path = strings.TrimSpace(name)
		if cf.Path == "" {
			return
		}

		if f, ok := byPath[cf.Path]; ok {
			cf.Additions = f.Additions()
			cf.Deletions = f.Deletions()
		} else {
			cf.Additions, cf.Deletions = graphCounts(row)
			p.report(doc, componentCommit, "td.graph", "per-file counts estimated from graph", "path", cf.Path)
		}
		files = append(files, cf)
	})

	return files
}

func renamedFrom(f domain.DiffFile) string {
	if f.OldPath != f.NewPath {
		return f.OldPath
	}
	return ""
}

// graphCounts splits the total change count of a diffstat row by the
// widths of its add/rem graph cells.
func graphCounts(row *goquery.Selection) (int, int) {
	total, err := strconv.Atoi(document.Text(row.Find("td.right").First()))
	if err != nil || total <= 0 {
		return 0, 0
	}

	var add, rem float64
	row.Find("td.graph td").Each(func(_ int, cell *goquery.Selection) {
		m := widthPattern.FindStringSubmatch(document.Attr(cell, "style"))
		if m == nil {
			return
		}
		w, _ := strconv.ParseFloat(m[1], 64)
		switch {
		case cell.HasClass("add"):
			add += w
		case cell.HasClass("rem"), cell.HasClass("del"):
			rem += w
		}
	})

	if add+rem == 0 {
		return 0, 0
	}
	additions := int(math.Round(float64(total) * add / (add + rem)))
	return additions, total - additions
}

// diffStats reads cgit's summary line, falling back to the changed files
func diffStats(doc *document.Document, files []domain.ChangedFile) *domain.DiffStats {
	if sel, _ := doc.FindFirst("div.diffstat-summary"); sel != nil {
		stats := &domain.DiffStats{}
		matched := false
		for _, m := range statCountPattern.FindAllStringSubmatch(document.Text(sel), -1) {
			n, _ := strconv.Atoi(m[1])
			matched = true
			switch {
			case strings.HasPrefix(m[2], "file"):
				stats.FilesChanged = n
			case strings.HasPrefix(m[2], "insertion"):
				stats.Insertions = n
			case strings.HasPrefix(m[2], "deletion"):
				stats.Deletions = n
			}
		}
		if matched {
			return stats
		}
	}

	if len(files) == 0 {
		return nil
	}
	stats := &domain.DiffStats{FilesChanged: len(files)}
	for _, f := range files {
		stats.Insertions += f.Additions
		stats.Deletions += f.Deletions
	}
	return stats
}
