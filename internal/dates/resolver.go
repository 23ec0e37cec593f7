// Package dates turns the absolute and relative timestamps shown by cgit
// into time.Time values.
package dates

import (
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// Absolute layouts tried in order before relative parsing
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
}

// unit is matched by its stem: any word starting with the stem, or any
// prefix of the stem at least minStem letters long. Abbreviations that are
// not stem prefixes are listed explicitly.
type unit struct {
	stem     string
	abbrevs  []string
	duration time.Duration
	months   int
}

const minStem = 3

var units = []unit{
	{stem: "second", abbrevs: []string{"s", "secs"}, duration: time.Second},
	{stem: "minute", abbrevs: []string{"m", "mins"}, duration: time.Minute},
	{stem: "hour", abbrevs: []string{"h", "hr", "hrs"}, duration: time.Hour},
	{stem: "day", abbrevs: []string{"d"}, duration: 24 * time.Hour},
	{stem: "week", abbrevs: []string{"w", "wk", "wks"}, duration: 7 * 24 * time.Hour},
	{stem: "month", abbrevs: []string{"mo", "mos", "mons"}, months: 1},
	{stem: "year", abbrevs: []string{"y", "yr", "yrs"}, months: 12},
}

// Resolver parses date strings. The zero value uses time.Now.
type Resolver struct {
	// Now supplies the reference time for relative dates
	Now func() time.Time
}

// NewResolver creates a resolver with a fixed clock
func NewResolver(now func() time.Time) *Resolver {
	return &Resolver{Now: now}
}

// Parse resolves s into a timestamp. ok is false when nothing matched;
// callers treat that as unknown.
func (r *Resolver) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := parseAbsolute(s); ok {
		return t, true
	}

	if t, ok := r.parseRelative(s); ok {
		return t, true
	}

	// dateparse covers the long tail of layouts some installations emit
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// ParsePtr is Parse returning nil for unknown dates
func (r *Resolver) ParsePtr(s string) *time.Time {
	t, ok := r.Parse(s)
	if !ok {
		return nil
	}
	return &t
}

func (r *Resolver) now() time.Time {
	if r == nil || r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func parseAbsolute(s string) (time.Time, bool) {
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRelative handles "<n> <unit>[.]" with an optional trailing "ago"
func (r *Resolver) parseRelative(s string) (time.Time, bool) {
	s = strings.TrimRight(strings.ToLower(s), ". ")
	fields := strings.Fields(s)
	if len(fields) == 3 && fields[2] == "ago" {
		fields = fields[:2]
	}
	if len(fields) != 2 {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return time.Time{}, false
	}

	u, ok := lookupUnit(fields[1])
	if !ok {
		return time.Time{}, false
	}

	now := r.now()
	if u.months > 0 {
		return now.AddDate(0, -n*u.months, 0), true
	}
	return now.Add(-time.Duration(n) * u.duration), true
}

// lookupUnit matches the leading letters of word, so "minute(s)" and
// "hours," resolve like "minutes" and "hours".
func lookupUnit(word string) (unit, bool) {
	name := word
	if i := strings.IndexFunc(name, func(r rune) bool { return !unicode.IsLetter(r) }); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return unit{}, false
	}

	for _, u := range units {
		if slices.Contains(u.abbrevs, name) {
			return u, true
		}
	}
	for _, u := range units {
		if strings.HasPrefix(name, u.stem) {
			return u, true
		}
		if len(name) >= minStem && strings.HasPrefix(u.stem, name) {
			return u, true
		}
	}
	return unit{}, false
}
