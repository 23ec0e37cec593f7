package fetcher

import (
	"math/rand/v2"
	"strings"
)

// UserAgents is a pool of real browser user agents. Some cgit mirrors sit
// behind bot filters that reject unknown clients.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:132.0) Gecko/20100101 Firefox/132.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
}

// AcceptLanguages are common Accept-Language header values
var AcceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9,en-US;q=0.8",
	"en,en-US;q=0.9",
}

// RandomUserAgent returns a random user agent from the pool
func RandomUserAgent() string {
	return UserAgents[rand.IntN(len(UserAgents))]
}

// RandomAcceptLanguage returns a random Accept-Language header value
func RandomAcceptLanguage() string {
	return AcceptLanguages[rand.IntN(len(AcceptLanguages))]
}

// RequestHeaders returns the headers sent with every page request. An
// empty userAgent picks one from the pool.
func RequestHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = RandomUserAgent()
	}

	headers := map[string]string{
		"User-Agent":                userAgent,
		"Accept":                    "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8",
		"Accept-Language":           RandomAcceptLanguage(),
		"Accept-Encoding":           "gzip, deflate, br",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Upgrade-Insecure-Requests": "1",
	}

	if isChrome(userAgent) {
		headers["Sec-CH-UA"] = `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`
		headers["Sec-CH-UA-Mobile"] = "?0"
	}

	return headers
}

func isChrome(userAgent string) bool {
	return strings.Contains(userAgent, "Chrome") || strings.Contains(userAgent, "Chromium")
}
