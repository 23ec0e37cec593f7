package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// KeyPrefix constants for different cache types
const (
	PrefixPage = "page"
)

// fullSHA matches a complete object id
var fullSHA = regexp.MustCompile(`^[0-9a-f]{40}([0-9a-f]{24})?$`)

// GenerateKey generates a cache key from a URL
// The key is a SHA256 hash of the normalized URL
func GenerateKey(rawURL string) string {
	normalized := normalizeForKey(rawURL)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// GenerateKeyWithPrefix generates a cache key with a prefix
func GenerateKeyWithPrefix(prefix, rawURL string) string {
	return prefix + ":" + GenerateKey(rawURL)
}

// PageKey generates a cache key for a fetched page
func PageKey(url string) string {
	return GenerateKeyWithPrefix(PrefixPage, url)
}

// normalizeForKey normalizes a URL for consistent key generation. Query
// parameters are significant on cgit (id, ofs, h, path) and are kept in
// sorted order.
func normalizeForKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}

	u.Host = strings.ToLower(u.Host)

	// Remove default ports
	if (u.Scheme == "http" && u.Port() == "80") ||
		(u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}

	if u.Path == "" {
		u.Path = "/"
	} else {
		u.Path = path.Clean(u.Path)
	}
	u.RawPath = ""

	// Remove trailing slash except for root
	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}
	u.Fragment = ""

	return u.String()
}

// IsImmutableURL reports whether the page at rawURL is pinned to a full
// object id, so its content can never change
func IsImmutableURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return fullSHA.MatchString(strings.ToLower(u.Query().Get("id")))
}
