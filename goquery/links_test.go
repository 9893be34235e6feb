package goquery_test

import (
	"testing"

	"github.com/sjseo298/webmirror"
	gq "github.com/sjseo298/webmirror/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linksPage = `<html><body>
	<a href="/docs/a">A</a>
	<a href="docs/b#section">B</a>
	<a href="https://other.com/c">C</a>
	<a href="/docs/a">A again</a>
	<a href="mailto:team@example.com">mail</a>
	<a href="javascript:void(0)">js</a>
	<a href="#top">top</a>
</body></html>`

func TestExtractLinks_resolves_dedupes_and_skips_non_http(t *testing.T) {
	t.Parallel()

	doc, err := gq.Parse(linksPage)
	require.NoError(t, err)

	links := gq.ExtractLinks(doc, "https://example.com/docs/index")

	assert.Equal(t, []string{
		"https://example.com/docs/a",
		"https://example.com/docs/docs/b",
		"https://other.com/c",
	}, links)
}

func TestRewriteLinks_uses_resolver_and_absolutizes_the_rest(t *testing.T) {
	t.Parallel()

	doc, err := gq.Parse(`<html><body>
		<a href="/docs/a">A</a>
		<a href="/docs/unknown">U</a>
	</body></html>`)
	require.NoError(t, err)

	gq.RewriteLinks(doc, "https://example.com/docs/index", func(cleanURL string) (string, bool) {
		if cleanURL == "https://example.com/docs/a" {
			return "../a/index.md", true
		}
		return "", false
	})

	html, err := gq.Render(doc)
	require.NoError(t, err)
	assert.Contains(t, html, `href="../a/index.md"`)
	assert.Contains(t, html, `href="https://example.com/docs/unknown"`, "unmapped link is left absolute")
}

func TestNeutralize_strips_active_content(t *testing.T) {
	t.Parallel()

	doc, err := gq.Parse(`<html><head>
		<meta http-equiv="refresh" content="0;url=https://evil.example">
		<meta charset="utf-8">
		<script src="app.js"></script>
	</head><body onload="boom()">
		<noscript>enable js</noscript>
		<div onclick="track()" class="keep">text</div>
	</body></html>`)
	require.NoError(t, err)

	gq.Neutralize(doc)

	html, err := gq.Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "<noscript")
	assert.NotContains(t, html, "http-equiv")
	assert.NotContains(t, html, "onload")
	assert.NotContains(t, html, "onclick")
	assert.Contains(t, html, `charset="utf-8"`, "other meta tags survive")
	assert.Contains(t, html, `class="keep"`, "non-event attributes survive")
}

func TestMainContent_selector_cascade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "main-content id wins",
			html: `<html><body><main>wrong</main><div id="main-content">right</div></body></html>`,
			want: "right",
		},
		{
			name: "wiki-content class",
			html: `<html><body><div class="wiki-content">right</div><article>wrong</article></body></html>`,
			want: "right",
		},
		{
			name: "falls back to body",
			html: `<html><body><p>right</p></body></html>`,
			want: "right",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := gq.Parse(tt.html)
			require.NoError(t, err)

			_, content, err := gq.MainContent(doc)
			require.NoError(t, err)
			assert.Contains(t, content, tt.want)
			assert.NotContains(t, content, "wrong")
		})
	}
}

func TestMainContent_removes_navigation_chrome(t *testing.T) {
	t.Parallel()

	doc, err := gq.Parse(`<html><head><title>Guide  </title></head><body>
		<div id="main-content">
			<nav>menu</nav>
			<div class="breadcrumbs">Home / Guide</div>
			<p>body text</p>
		</div>
	</body></html>`)
	require.NoError(t, err)

	title, content, err := gq.MainContent(doc)
	require.NoError(t, err)
	assert.Equal(t, "Guide", title)
	assert.Contains(t, content, "body text")
	assert.NotContains(t, content, "menu")
	assert.NotContains(t, content, "breadcrumbs")
}

func TestRewriteResources_rewrites_only_downloaded_assets(t *testing.T) {
	t.Parallel()

	doc, err := gq.Parse(`<html><head>
		<link rel="stylesheet" href="/static/site.css">
	</head><body>
		<img src="https://cdn.example.com/logo.png">
		<img src="/static/skip.png">
	</body></html>`)
	require.NoError(t, err)

	var requested []string
	gq.RewriteResources(doc, "https://example.com/docs/a", func(resourceURL string, kind webmirror.ResourceType) (string, bool) {
		requested = append(requested, resourceURL)
		switch resourceURL {
		case "https://example.com/static/site.css":
			assert.Equal(t, webmirror.ResourceCSS, kind)
			return "../resources/site.css", true
		case "https://cdn.example.com/logo.png":
			assert.Equal(t, webmirror.ResourceImage, kind)
			return "../resources/cdn_images/logo.png", true
		}
		return "", false
	})

	html, err := gq.Render(doc)
	require.NoError(t, err)
	assert.Contains(t, html, `href="../resources/site.css"`)
	assert.Contains(t, html, `src="../resources/cdn_images/logo.png"`)
	assert.Contains(t, html, `src="/static/skip.png"`, "declined resource keeps its reference")
	assert.Len(t, requested, 3)
}
