package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestResolver() *Resolver {
	return NewResolver(func() time.Time { return fixedNow })
}

func TestResolver_Absolute(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"iso8601", "2024-03-05T10:20:30Z", time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)},
		{"date only", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"cgit title", "2024-03-05 10:20:30 +0000", time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)},
		{"surrounding spaces", "  2024-03-05  ", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Parse(tt.input)
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestResolver_AbsoluteKeepsOffset(t *testing.T) {
	got, ok := newTestResolver().Parse("2024-03-05 10:20:30 +0200")
	require.True(t, ok)

	_, offset := got.Zone()
	assert.Equal(t, 2*60*60, offset)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 5, got.Day())
}

func TestResolver_Relative(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"45 min.", time.Date(2025, 1, 1, 11, 15, 0, 0, time.UTC)},
		{"10 seconds", fixedNow.Add(-10 * time.Second)},
		{"1 second", fixedNow.Add(-time.Second)},
		{"2 mins", fixedNow.Add(-2 * time.Minute)},
		{"3 hours", fixedNow.Add(-3 * time.Hour)},
		{"3 days", fixedNow.Add(-72 * time.Hour)},
		{"2 weeks", fixedNow.Add(-14 * 24 * time.Hour)},
		{"4 months", time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)},
		{"2 years", time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"5 Days", fixedNow.Add(-5 * 24 * time.Hour)},
		{"5 days ago", fixedNow.Add(-5 * 24 * time.Hour)},
		{"0 min.", fixedNow},
		{"3 minute(s)", fixedNow.Add(-3 * time.Minute)},
		{"2 hours,", fixedNow.Add(-2 * time.Hour)},
		{"7 sec", fixedNow.Add(-7 * time.Second)},
		{"1 mon", time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)},
		{"6 mos", time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)},
		{"1 yr.", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := r.Parse(tt.input)
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(got), "got %s want %s", got, tt.expected)
		})
	}
}

func TestResolver_Failures(t *testing.T) {
	r := newTestResolver()

	for _, input := range []string{"", "   ", "soon", "three days", "3 fortnights", "-2 days", "[no date]"} {
		t.Run(input, func(t *testing.T) {
			_, ok := r.Parse(input)
			assert.False(t, ok)
			assert.Nil(t, r.ParsePtr(input))
		})
	}
}

func TestResolver_ZeroValueUsesWallClock(t *testing.T) {
	var r Resolver

	before := time.Now()
	got, ok := r.Parse("1 hour")
	require.True(t, ok)

	assert.WithinDuration(t, before.Add(-time.Hour), got, 5*time.Second)
}

func TestResolver_ParsePtr(t *testing.T) {
	got := newTestResolver().ParsePtr("2024-03-05")
	require.NotNil(t, got)
	assert.Equal(t, 2024, got.Year())
}

func TestLookupUnit(t *testing.T) {
	tests := []struct {
		word  string
		stem  string
		found bool
	}{
		{"minute(s)", "minute", true},
		{"hours,", "hour", true},
		{"min", "minute", true},
		{"m", "minute", true},
		{"mo", "month", true},
		{"mont", "month", true},
		{"wks", "week", true},
		{"mi", "", false},
		{"(days)", "", false},
		{"fortnight", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			u, ok := lookupUnit(tt.word)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.stem, u.stem)
		})
	}
}
