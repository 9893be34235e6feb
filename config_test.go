package webmirror_test

import (
	"testing"

	"github.com/sjseo298/webmirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := webmirror.DefaultConfig()
	valid.Website.StartURL = "https://example.com/docs/"
	assert.NoError(t, valid.Validate())

	missingStart := webmirror.DefaultConfig()
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(missingStart.Validate()))

	badFormat := webmirror.DefaultConfig()
	badFormat.Website.StartURL = "https://example.com/"
	badFormat.Output.Format = "pdf"
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(badFormat.Validate()))

	badTristate := webmirror.DefaultConfig()
	badTristate.Website.StartURL = "https://example.com/"
	badTristate.Website.Confluence.UseAPI = "maybe"
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(badTristate.Validate()))
}

func TestConfig_Workers_clamps_to_bounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		maxWorkers int
		want       int
	}{
		{name: "zero uses default", maxWorkers: 0, want: 5},
		{name: "negative uses default", maxWorkers: -3, want: 5},
		{name: "in range is kept", maxWorkers: 12, want: 12},
		{name: "above cap is clamped", maxWorkers: 200, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := webmirror.DefaultConfig()
			cfg.Crawling.MaxWorkers = tt.maxWorkers
			assert.Equal(t, tt.want, cfg.Workers())
		})
	}
}

func TestIsConfluenceURL_detects_hosting_patterns(t *testing.T) {
	t.Parallel()

	confluence := []string{
		"https://acme.atlassian.net/wiki/spaces/AR/overview",
		"https://wiki.corp.example/confluence/display/AR/Home",
		"https://host/pages/viewpage.action?pageId=1",
		"https://host/rest/api/content/123",
	}
	for _, url := range confluence {
		assert.True(t, webmirror.IsConfluenceURL(url), url)
	}

	assert.False(t, webmirror.IsConfluenceURL("https://docs.example.com/guides/setup"))
	assert.False(t, webmirror.IsConfluenceURL(""))
}

func TestConfig_IsConfluenceSite_honors_override(t *testing.T) {
	t.Parallel()

	cfg := webmirror.DefaultConfig()
	cfg.Website.StartURL = "https://docs.example.com/guides/"

	assert.False(t, cfg.IsConfluenceSite(), "auto mode with a plain URL")

	cfg.Website.Confluence.IsConfluence = webmirror.TristateTrue
	assert.True(t, cfg.IsConfluenceSite(), "forced true")

	cfg.Website.Confluence.IsConfluence = webmirror.TristateFalse
	cfg.Website.StartURL = "https://acme.atlassian.net/wiki/spaces/AR/overview"
	assert.False(t, cfg.IsConfluenceSite(), "forced false beats detection")
}

func TestCredentials_APIBase_ensures_rest_api_suffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		want string
	}{
		{
			name: "bare host gains wiki and rest segments",
			base: "https://acme.atlassian.net",
			want: "https://acme.atlassian.net/wiki/rest/api",
		},
		{
			name: "wiki base gains rest segment",
			base: "https://acme.atlassian.net/wiki",
			want: "https://acme.atlassian.net/wiki/rest/api",
		},
		{
			name: "full API base is untouched",
			base: "https://acme.atlassian.net/wiki/rest/api",
			want: "https://acme.atlassian.net/wiki/rest/api",
		},
		{
			name: "trailing slash is trimmed",
			base: "https://acme.atlassian.net/",
			want: "https://acme.atlassian.net/wiki/rest/api",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			creds := &webmirror.Credentials{Email: "e", Token: "t", BaseURL: tt.base}
			assert.Equal(t, tt.want, creds.APIBase())
		})
	}
}

func TestConfig_UseAPIDriver(t *testing.T) {
	t.Parallel()

	valid := &webmirror.Credentials{Email: "e@x.com", Token: "tok", BaseURL: "https://acme.atlassian.net"}

	cfg := webmirror.DefaultConfig()
	cfg.Website.StartURL = "https://acme.atlassian.net/wiki/spaces/AR/overview"

	use, err := cfg.UseAPIDriver(valid)
	require.NoError(t, err)
	assert.True(t, use, "auto mode with credentials on a confluence site")

	use, err = cfg.UseAPIDriver(nil)
	require.NoError(t, err)
	assert.False(t, use, "auto mode without credentials falls back to HTML")

	cfg.Website.Confluence.UseAPI = webmirror.TristateTrue
	_, err = cfg.UseAPIDriver(nil)
	require.Error(t, err, "forced API mode without credentials is fatal")
	assert.Equal(t, webmirror.EAUTH, webmirror.ErrorCode(err))

	cfg.Website.Confluence.UseAPI = webmirror.TristateFalse
	use, err = cfg.UseAPIDriver(valid)
	require.NoError(t, err)
	assert.False(t, use, "forced HTML mode beats credentials")
}
