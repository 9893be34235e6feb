package htmltomarkdown_test

import (
	"testing"

	"github.com/sjseo298/webmirror"
	"github.com/sjseo298/webmirror/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert_handles_headings_links_and_tables(t *testing.T) {
	t.Parallel()

	c := htmltomarkdown.NewConverter()

	md, err := c.Convert(`<h2>Install</h2><p>See <a href="../a/index.md">the guide</a>.</p>
		<table><tr><th>Key</th><th>Value</th></tr><tr><td>depth</td><td>3</td></tr></table>`)
	require.NoError(t, err)

	assert.Contains(t, md, "## Install")
	assert.Contains(t, md, "[the guide](../a/index.md)")
	assert.Contains(t, md, "| Key | Value |")
	assert.Contains(t, md, "| depth | 3 |")
}

func TestConverter_Convert_rejects_empty_input(t *testing.T) {
	t.Parallel()

	c := htmltomarkdown.NewConverter()

	_, err := c.Convert("   ")
	require.Error(t, err)
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(err))
}

func TestPageHeader_includes_title_and_source(t *testing.T) {
	t.Parallel()

	header := htmltomarkdown.PageHeader("Getting Started", "https://example.com/docs/start")
	assert.Equal(t, "# Getting Started\n\n> Source: https://example.com/docs/start\n\n", header)

	untitled := htmltomarkdown.PageHeader("", "https://example.com/docs/start")
	assert.Equal(t, "> Source: https://example.com/docs/start\n\n", untitled)
}

func TestWikiHeader_includes_space_page_and_update_time(t *testing.T) {
	t.Parallel()

	header := htmltomarkdown.WikiHeader("My Page", "AR", "556040223", "2026-01-02T03:04:05Z")
	assert.Equal(t, "# My Page\n\n> Space: AR | Page ID: 556040223 | Updated: 2026-01-02T03:04:05Z\n\n", header)
}
