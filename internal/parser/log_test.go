package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitLog_Page(t *testing.T) {
	p, sink := newTestParser()

	log, err := p.CommitLog(logPage, "https://git.example.com/repo/log/")
	require.NoError(t, err)
	require.Len(t, log.Commits, 3)

	first := log.Commits[0]
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", first.SHA)
	assert.Equal(t, "0123456", first.ShortSHA)
	assert.Equal(t, "Fix the thing", first.Subject)
	assert.Equal(t, "Fix the thing", first.Message)
	assert.Equal(t, "Jane Doe", first.AuthorName)
	assert.Equal(t, []string{"master", "v1.0"}, first.Decorations)
	assert.True(t, time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC).Equal(first.Date))

	second := log.Commits[1]
	assert.Equal(t, "fedcba9876543210fedcba9876543210fedcba98", second.SHA, "sha stops at the next parameter")
	assert.Equal(t, "Add feature", second.Subject)
	assert.Equal(t, "Add feature\n\nLonger explanation\nof the feature.", second.Message)
	assert.True(t, fixedNow.AddDate(0, 0, -3).Equal(second.Date))
	assert.Empty(t, second.Decorations)

	third := log.Commits[2]
	assert.Equal(t, "Undated", third.Subject)
	assert.True(t, fixedNow.Equal(third.Date), "unknown dates fall back to now")
	assert.Contains(t, sink.components(), componentLog)

	assert.True(t, log.HasMore)
	require.NotNil(t, log.NextOffset)
	assert.Equal(t, 50, *log.NextOffset)

	for _, c := range log.Commits {
		assert.Equal(t, c.SHA[:7], c.ShortSHA)
	}
}

func TestCommitLog_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		pager      string
		wantMore   bool
		wantOffset *int
	}{
		{
			name:     "no pager",
			pager:    ``,
			wantMore: false,
		},
		{
			name:       "next with offset",
			pager:      `<ul class='pager'><li><a href='/repo/log/?ofs=100'>[prev]</a></li><li><a href='/repo/log/?h=master&amp;ofs=150'>[next]</a></li></ul>`,
			wantMore:   true,
			wantOffset: intPtr(150),
		},
		{
			name:     "next without offset",
			pager:    `<ul class='pager'><li><a href='/repo/log/?h=master'>[next]</a></li></ul>`,
			wantMore: true,
		},
		{
			name:     "only previous",
			pager:    `<ul class='pager'><li><a href='/repo/log/?ofs=0'>[prev]</a></li></ul>`,
			wantMore: false,
		},
		{
			name:       "ellipsis in last list row",
			pager:      `<table class='list'><tr><td colspan='3'><a href='/repo/log/?ofs=50'>[...]</a></td></tr></table>`,
			wantMore:   true,
			wantOffset: intPtr(50),
		},
		{
			name:     "stray next link outside the pager",
			pager:    `<p><a href='/about/'>next</a></p>`,
			wantMore: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestParser()
			page := `<table class='list'><tr><th>Age</th><th>Commit message</th><th>Author</th></tr>
<tr><td>1 day</td><td><a href='/repo/commit/?id=abcdef1'>msg</a></td><td>A</td></tr></table>` + tt.pager

			log, err := p.CommitLog(page, "")
			require.NoError(t, err)
			require.Len(t, log.Commits, 1)
			assert.True(t, fixedNow.Add(-24*time.Hour).Equal(log.Commits[0].Date), "age text without a span is used")
			assert.Equal(t, tt.wantMore, log.HasMore)
			assert.Equal(t, tt.wantOffset, log.NextOffset)
		})
	}
}

func TestCommitLog_SubjectReadingNext(t *testing.T) {
	p, _ := newTestParser()
	page := `<table class='list'><tr><th>Age</th><th>Commit message</th><th>Author</th></tr>
<tr><td>1 day</td><td><a href='/repo/commit/?id=abcdef1'>next</a></td><td>A</td></tr>
<tr><td>2 days</td><td><a href='/repo/commit/?id=abcdef2'>older</a></td><td>B</td></tr></table>
<ul class='pager'><li><a href='/repo/log/?ofs=50'>[next]</a></li></ul>`

	log, err := p.CommitLog(page, "")
	require.NoError(t, err)
	require.Len(t, log.Commits, 2)
	assert.Equal(t, "next", log.Commits[0].Subject)
	assert.True(t, log.HasMore)
	require.NotNil(t, log.NextOffset)
	assert.Equal(t, 50, *log.NextOffset)

	log, err = p.CommitLog(strings.Replace(page, "<ul class='pager'><li><a href='/repo/log/?ofs=50'>[next]</a></li></ul>", "", 1), "")
	require.NoError(t, err)
	assert.False(t, log.HasMore, "commit subjects are not pager links")
	assert.Nil(t, log.NextOffset)
}

func TestCommitLog_EmptyTable(t *testing.T) {
	p, _ := newTestParser()

	log, err := p.CommitLog(`<table class='list'><tr><th>Age</th><th>Commit message</th></tr></table>`, "")
	require.NoError(t, err)
	assert.NotNil(t, log.Commits)
	assert.Empty(t, log.Commits)
	assert.False(t, log.HasMore)
	assert.Nil(t, log.NextOffset)
}

func TestEmailFrom(t *testing.T) {
	p, _ := newTestParser()
	page := `<table class='list'><tr><th>Age</th><th>Commit message</th><th>Author</th></tr>
<tr><td>1 day</td><td><a href='/r/commit/?id=abc1234'>one</a></td><td><a href='mailto:jane@example.com'>Jane</a></td></tr>
<tr><td>1 day</td><td><a href='/r/commit/?id=abc5678'>two</a></td><td><span title='&lt;john@example.com&gt;'>John</span></td></tr>
</table>`

	log, err := p.CommitLog(page, "")
	require.NoError(t, err)
	require.Len(t, log.Commits, 2)
	assert.Equal(t, "jane@example.com", log.Commits[0].AuthorEmail)
	assert.Equal(t, "john@example.com", log.Commits[1].AuthorEmail)
	assert.Equal(t, "John", log.Commits[1].AuthorName)
}

func intPtr(n int) *int {
	return &n
}
