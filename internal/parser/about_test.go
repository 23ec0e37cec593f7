package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbout_Sanitized(t *testing.T) {
	p, _ := newTestParser()

	about, err := p.About(aboutPage, "https://git.example.com/repo/about/")
	require.NoError(t, err)
	require.False(t, about.IsEmpty())

	assert.Contains(t, about.HTML, "<h1>Title</h1>")
	assert.Contains(t, about.HTML, `href="https://git.example.com/repo/about/docs/guide.md"`)
	assert.Contains(t, about.HTML, `href="#install"`)
	assert.Contains(t, about.HTML, `src="https://git.example.com/logo.png"`)
	assert.NotContains(t, about.HTML, "<script")
	assert.NotContains(t, about.HTML, "alert")
	assert.NotContains(t, about.HTML, "<style")
	assert.NotContains(t, about.HTML, "onerror")
}

func TestAbout_NoContent(t *testing.T) {
	p, _ := newTestParser()

	about, err := p.About(`<html><body><p>This repository has no README.</p></body></html>`, "")
	require.NoError(t, err)
	assert.True(t, about.IsEmpty())
	assert.Equal(t, "", about.HTML)
}

func TestAbout_EmptyContainer(t *testing.T) {
	p, _ := newTestParser()

	about, err := p.About(`<html><body><div id='summary'>   </div></body></html>`, "")
	require.NoError(t, err)
	assert.True(t, about.IsEmpty())
}

func TestAbout_DoesNotTouchInput(t *testing.T) {
	p, _ := newTestParser()

	first, err := p.About(aboutPage, "")
	require.NoError(t, err)
	second, err := p.About(aboutPage, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first.HTML, `href="docs/guide.md"`, "links stay relative without a source URL")
}
