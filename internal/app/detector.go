package app

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/quantmind-br/cgitscrape/internal/parser"
)

// PageKind identifies which cgit view a page is
type PageKind string

const (
	PageRepos   PageKind = "repos"
	PageLog     PageKind = "log"
	PageTree    PageKind = "tree"
	PageRefs    PageKind = "refs"
	PageCommit  PageKind = "commit"
	PageDiff    PageKind = "diff"
	PageSummary PageKind = "summary"
	PageAbout   PageKind = "about"
	PageBlob    PageKind = "blob"
	PageUnknown PageKind = "unknown"
)

// AllPageKinds lists the kinds Extract accepts
var AllPageKinds = []PageKind{
	PageRepos, PageLog, PageTree, PageRefs, PageCommit,
	PageDiff, PageSummary, PageAbout, PageBlob,
}

// pageSegments maps cgit URL segments to page kinds. "plain" and "blob"
// both render file content; "patch" and "diff" both render changes.
var pageSegments = map[string]PageKind{
	"log":     PageLog,
	"tree":    PageTree,
	"refs":    PageRefs,
	"commit":  PageCommit,
	"diff":    PageDiff,
	"patch":   PageDiff,
	"summary": PageSummary,
	"about":   PageAbout,
	"blob":    PageBlob,
	"plain":   PageBlob,
}

// Target is a cgit URL split into its parts
type Target struct {
	Kind PageKind
	// Repo is the repository path relative to the installation root
	Repo string
	// Path is the file path after the page segment
	Path string
	// Query carries cgit parameters such as id, h and ofs
	Query url.Values
}

// ParseKind validates a page kind name
func ParseKind(name string) (PageKind, error) {
	kind := PageKind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range AllPageKinds {
		if k == kind {
			return kind, nil
		}
	}
	return PageUnknown, fmt.Errorf("unknown page kind %q", name)
}

// DetectPage splits a cgit page URL. mount is the path prefix of the
// installation ("" when cgit is served from the host root). A URL with no
// repository is the index; a repository URL without a page segment is
// its summary.
func DetectPage(rawURL, mount string) (Target, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Target{Kind: PageUnknown}, err
	}

	p := strings.Trim(u.Path, "/")
	mount = strings.Trim(mount, "/")
	if mount != "" {
		if p != mount && !strings.HasPrefix(p, mount+"/") {
			return Target{Kind: PageUnknown}, fmt.Errorf("%s is outside %s", rawURL, mount)
		}
		p = strings.Trim(strings.TrimPrefix(p, mount), "/")
	}

	t := Target{Kind: PageRepos, Query: u.Query()}
	if p == "" {
		return t, nil
	}

	segments := strings.Split(p, "/")
	for i := 1; i < len(segments); i++ {
		if kind, ok := pageSegments[segments[i]]; ok {
			t.Kind = kind
			t.Repo = strings.Join(segments[:i], "/")
			t.Path = strings.Join(segments[i+1:], "/")
			return t, nil
		}
	}

	t.Kind = PageSummary
	t.Repo = p
	return t, nil
}

// Extract runs the extractor for kind over an already fetched page
func Extract(p *parser.Parser, kind PageKind, raw, sourceURL string) (any, error) {
	switch kind {
	case PageRepos:
		return p.Repositories(raw, sourceURL)
	case PageLog:
		return p.CommitLog(raw, sourceURL)
	case PageTree:
		return p.Tree(raw, sourceURL)
	case PageRefs:
		return p.Refs(raw, sourceURL)
	case PageCommit:
		return p.Commit(raw, sourceURL)
	case PageDiff:
		return p.Diff(raw, sourceURL)
	case PageSummary:
		return p.Summary(raw, sourceURL)
	case PageAbout:
		return p.About(raw, sourceURL)
	case PageBlob:
		return p.Blob(raw, sourceURL)
	default:
		return nil, fmt.Errorf("unknown page kind %q", kind)
	}
}
