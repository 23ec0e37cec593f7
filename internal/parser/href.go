package parser

import (
	"net/url"
	"strconv"
	"strings"
)

// queryParam extracts key from the query string of href. It falls back to
// a raw scan, trimmed at the next '&', when href does not parse.
func queryParam(href, key string) string {
	if u, err := url.Parse(href); err == nil {
		return strings.TrimSpace(u.Query().Get(key))
	}

	for _, marker := range []string{"?" + key + "=", "&" + key + "=", ";" + key + "="} {
		idx := strings.Index(href, marker)
		if idx == -1 {
			continue
		}
		v := href[idx+len(marker):]
		if end := strings.IndexAny(v, "&#"); end != -1 {
			v = v[:end]
		}
		return strings.TrimSpace(v)
	}
	return ""
}

// intParam parses key as a non-negative integer
func intParam(href, key string) (int, bool) {
	v := queryParam(href, key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// stripQuery drops the query string and fragment
func stripQuery(href string) string {
	if idx := strings.IndexAny(href, "?#"); idx != -1 {
		return href[:idx]
	}
	return href
}

// pathAfterSegment returns the query-less remainder of href after the first
// of segments it contains, unescaped and trimmed of slashes.
func pathAfterSegment(href string, segments ...string) string {
	p := stripQuery(href)
	for _, seg := range segments {
		idx := strings.Index(p, seg)
		if idx == -1 {
			continue
		}
		rest := p[idx+len(seg):]
		if unescaped, err := url.PathUnescape(rest); err == nil {
			rest = unescaped
		}
		return strings.Trim(rest, "/")
	}
	return ""
}

// hrefPath returns the path component of href, unescaped
func hrefPath(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return stripQuery(href)
	}
	return u.Path
}

// trimMountPrefix strips the path under which cgit is mounted, taken from
// sourceURL, from p.
func trimMountPrefix(p, sourceURL string) string {
	if sourceURL == "" {
		return p
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return p
	}
	prefix := strings.TrimSuffix(u.Path, "/")
	if prefix == "" || prefix == "/" {
		return p
	}
	if strings.HasPrefix(p, prefix+"/") {
		return p[len(prefix):]
	}
	return p
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
