package parser

import (
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

const componentTree = "tree"

// wellKnownFiles are extensionless names that are files
var wellKnownFiles = map[string]bool{
	"readme":      true,
	"license":     true,
	"notice":      true,
	"makefile":    true,
	"dockerfile":  true,
	"jenkinsfile": true,
	"vagrantfile": true,
}

// treeEntry is the raw material of one listing row
type treeEntry struct {
	link *goquery.Selection
	cell *goquery.Selection
	name string
	href string
	mode string
	size *int64
}

// classifier is one layer of the file/directory heuristic. weak layers
// may be overridden by the missing-size demotion rule.
type classifier struct {
	name     string
	weak     bool
	classify func(e treeEntry) (domain.NodeType, bool)
}

var treeClassifiers = []classifier{
	{name: "anchor-class", classify: func(e treeEntry) (domain.NodeType, bool) { return classByCSS(e.link) }},
	{name: "cell-class", classify: func(e treeEntry) (domain.NodeType, bool) { return classByCSS(e.cell) }},
	{name: "mode", classify: func(e treeEntry) (domain.NodeType, bool) { return classifyMode(e.mode) }},
	{name: "href", classify: func(e treeEntry) (domain.NodeType, bool) { return classifyHref(e.href) }},
	{name: "well-known-name", classify: classifyWellKnownName},
	{name: "name", weak: true, classify: classifyName},
	{name: "default", weak: true, classify: func(treeEntry) (domain.NodeType, bool) { return domain.NodeFile, true }},
}

// Tree extracts the entries of a directory listing page
func (p *Parser) Tree(raw, sourceURL string) ([]domain.TreeNode, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}

	nodes := []domain.TreeNode{}
	table, _ := doc.FindFirst("table[summary='tree listing']", "table.list")
	if table == nil {
		p.report(doc, componentTree, "table.list", "no tree listing found")
		return nodes, nil
	}

	dir := breadcrumbPath(doc)
	cols := columns{}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if isHeaderRow(row) {
			cols = headerColumns(row)
			return
		}
		entry, ok := treeEntryFromRow(row, cols)
		if !ok {
			return
		}
		nodes = append(nodes, p.classifyEntry(doc, entry, dir))
	})

	return nodes, nil
}

func treeEntryFromRow(row *goquery.Selection, cols columns) (treeEntry, bool) {
	link := row.Find("a.ls-dir, a.ls-blob, a.ls-mod, a.ls-link").First()
	if link.Length() == 0 {
		cell := cellAt(row, cols.index(1, "name"))
		if cell == nil {
			return treeEntry{}, false
		}
		link = cell.Find("a[href]").First()
	}
	if link.Length() == 0 {
		return treeEntry{}, false
	}

	name := strings.TrimSuffix(document.Text(link), "/")
	if name == "" {
		return treeEntry{}, false
	}

	entry := treeEntry{
		link: link,
		cell: link.Parent(),
		name: name,
		href: document.Attr(link, "href"),
	}

	modeCell := row.Find("td.ls-mode").First()
	if modeCell.Length() == 0 {
		modeCell = cellAt(row, cols.index(0, "mode"))
	}
	if modeCell != nil {
		if mode := document.Text(modeCell); looksLikeMode(mode) {
			entry.mode = mode
		}
	}

	sizeCell := row.Find("td.ls-size").First()
	if sizeCell.Length() == 0 {
		sizeCell = cellAt(row, cols.index(-1, "size"))
	}
	if sizeCell != nil {
		entry.size = parseSize(document.Text(sizeCell))
	}

	return entry, true
}

func (p *Parser) classifyEntry(doc *document.Document, e treeEntry, dir string) domain.TreeNode {
	nodeType := domain.NodeFile
	weak := true
	for _, c := range treeClassifiers {
		if t, ok := c.classify(e); ok {
			nodeType, weak = t, c.weak
			break
		}
	}

	// Some installations omit size for files while always omitting it for
	// directories, so a weak file guess without size or file mode is demoted.
	// A genuinely empty file on a server that never reports sizes is
	// misread as a directory here.
	if nodeType == domain.NodeFile && weak &&
		(e.size == nil || *e.size == 0) && !isFileMode(e.mode) && !hrefNamesFile(e.href) {
		nodeType = domain.NodeDirectory
		p.report(doc, componentTree, "td.ls-size", "demoted sizeless entry to directory", "name", e.name)
	}

	node := domain.TreeNode{
		Name: e.name,
		Path: entryPath(e, dir),
		Type: nodeType,
		Mode: e.mode,
		Size: e.size,
	}
	return node
}

func entryPath(e treeEntry, dir string) string {
	if p := queryParam(e.href, "path"); p != "" {
		return strings.Trim(p, "/")
	}
	if p := pathAfterSegment(e.href, "/tree/", "/blob/", "/plain/"); p != "" && path.Base(p) == e.name {
		return p
	}
	if dir == "" {
		return e.name
	}
	return path.Join(dir, e.name)
}

func classByCSS(sel *goquery.Selection) (domain.NodeType, bool) {
	switch {
	case sel == nil:
		return "", false
	case sel.HasClass("ls-dir"):
		return domain.NodeDirectory, true
	case sel.HasClass("ls-blob"):
		return domain.NodeFile, true
	case sel.HasClass("ls-mod"):
		return domain.NodeSubmodule, true
	case sel.HasClass("ls-link"):
		return domain.NodeSymlink, true
	}
	return "", false
}

// octalModes maps git tree entry modes
var octalModes = map[string]domain.NodeType{
	"040000": domain.NodeDirectory,
	"40000":  domain.NodeDirectory,
	"100644": domain.NodeFile,
	"100755": domain.NodeFile,
	"100664": domain.NodeFile,
	"120000": domain.NodeSymlink,
	"160000": domain.NodeSubmodule,
}

func classifyMode(mode string) (domain.NodeType, bool) {
	if isPlaceholderMode(mode) {
		return "", false
	}
	if t, ok := octalModes[mode]; ok {
		return t, true
	}
	switch mode[0] {
	case 'd':
		return domain.NodeDirectory, true
	case 'l':
		return domain.NodeSymlink, true
	case 'm':
		return domain.NodeSubmodule, true
	case '-':
		return domain.NodeFile, true
	}
	return "", false
}

func classifyHref(href string) (domain.NodeType, bool) {
	p := stripQuery(href)
	switch {
	case strings.Contains(p, "/tree/"):
		return domain.NodeDirectory, true
	case strings.Contains(p, "/blob/"), strings.Contains(p, "/plain/"):
		return domain.NodeFile, true
	}
	return "", false
}

func classifyWellKnownName(e treeEntry) (domain.NodeType, bool) {
	switch {
	case e.name == "." || e.name == "..":
		return domain.NodeDirectory, true
	case wellKnownFiles[strings.ToLower(e.name)]:
		return domain.NodeFile, true
	}
	return "", false
}

func classifyName(e treeEntry) (domain.NodeType, bool) {
	if idx := strings.LastIndex(e.name, "."); idx > 0 && idx < len(e.name)-1 {
		return domain.NodeFile, true
	}
	return domain.NodeDirectory, true
}

func looksLikeMode(s string) bool {
	if s == "" {
		return false
	}
	if _, ok := octalModes[s]; ok {
		return true
	}
	if len(s) != 10 {
		return false
	}
	return strings.Trim(s[1:], "rwxsStT-") == ""
}

func isPlaceholderMode(mode string) bool {
	return strings.Trim(mode, "-?") == ""
}

func isFileMode(mode string) bool {
	if strings.HasPrefix(mode, "100") {
		return true
	}
	return len(mode) == 10 && mode[0] == '-' && strings.ContainsAny(mode, "rwx")
}

func hrefNamesFile(href string) bool {
	p := stripQuery(href)
	return strings.Contains(p, "/blob/") || strings.Contains(p, "/plain/")
}

// parseSize reads plain byte counts as well as humanized values like "1.2 KiB"
func parseSize(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return &n
	}
	if n, err := humanize.ParseBytes(s); err == nil {
		size := int64(n)
		return &size
	}
	return nil
}

// breadcrumbPath returns the directory shown in cgit's path bar, without
// the leading "root" segment.
func breadcrumbPath(doc *document.Document) string {
	sel, _ := doc.FindFirst("div.path", "nav.breadcrumb", ".breadcrumb")
	if sel == nil {
		return ""
	}
	text := document.Text(sel)
	text = strings.TrimSpace(strings.TrimPrefix(text, "path:"))
	text = strings.ReplaceAll(text, " / ", "/")
	parts := strings.Split(strings.Trim(text, "/"), "/")
	if len(parts) > 0 && strings.EqualFold(strings.TrimSpace(parts[0]), "root") {
		parts = parts[1:]
	}
	cleaned := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return strings.Join(cleaned, "/")
}
