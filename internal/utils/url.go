package utils

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// NormalizeBaseURL normalizes the root URL of a cgit installation. The
// result has a scheme, a lowercase host, no default port, no query, no
// fragment and no trailing slash.
func NormalizeBaseURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("empty base URL")
	}

	// If no scheme is present, prepend https:// before parsing
	// This ensures the host is correctly identified
	if !strings.Contains(rawURL, "://") && !strings.HasPrefix(rawURL, "//") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", rawURL)
	}

	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && u.Port() == "80") ||
		(u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}

	if u.Path != "" {
		u.Path = path.Clean(u.Path)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}

// RepoURL builds the URL of one page of a repository. page may be empty
// (the repository root), a bare page name ("log") or a page followed by
// a path ("tree/src/main.go"). Page names get the trailing slash cgit
// expects; paths keep their shape.
func RepoURL(base, repo, page string, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	b.WriteByte('/')

	repo = strings.Trim(repo, "/")
	if repo != "" {
		b.WriteString(escapePath(repo))
		b.WriteByte('/')
	}

	page = strings.TrimPrefix(page, "/")
	if page != "" {
		name, rest, hasRest := strings.Cut(page, "/")
		b.WriteString(url.PathEscape(name))
		b.WriteByte('/')
		if hasRest && rest != "" {
			b.WriteString(escapePath(rest))
		}
	}

	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// escapePath escapes every segment of p but keeps the separators
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// IsHTTPURL checks if a URL uses HTTP or HTTPS scheme
func IsHTTPURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
