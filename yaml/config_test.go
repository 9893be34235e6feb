package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sjseo298/webmirror"
	wmyaml "github.com/sjseo298/webmirror/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configYAML = `
website:
  base_url: https://example.atlassian.net
  base_domain: example.atlassian.net
  start_url: https://example.atlassian.net/wiki/spaces/AR/overview
  valid_url_patterns:
    - /wiki/
  confluence:
    is_confluence: "true"
    use_api: auto
crawling:
  max_depth: 4
  space_name: AR
  max_workers: 8
output:
  format: markdown
  output_dir: out
  resources_dir: resources
  confluence_output:
    save_api_response: true
    save_metadata_yml: true
    save_attachments: true
files:
  database_file: crawl.db
  cookies_file: cookies.txt
advanced:
  user_agent: webmirror/1.0
  headers:
    X-Team: docs
content:
  download_resources: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_overlays_defaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "config.yml", configYAML)

	cfg, err := wmyaml.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "example.atlassian.net", cfg.Website.BaseDomain)
	assert.Equal(t, 4, cfg.Crawling.MaxDepth)
	assert.Equal(t, 8, cfg.Workers())
	assert.Equal(t, webmirror.FormatMarkdown, cfg.Output.Format)
	assert.Equal(t, webmirror.TristateTrue, cfg.Website.Confluence.IsConfluence)
	assert.Equal(t, "webmirror/1.0", cfg.Advanced.UserAgent)
	assert.Equal(t, "docs", cfg.Advanced.Headers["X-Team"])
	assert.True(t, cfg.Output.Confluence.SaveAttachments)
}

func TestLoadConfig_rejects_missing_file_and_bad_yaml(t *testing.T) {
	t.Parallel()

	_, err := wmyaml.LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(err))

	path := writeFile(t, t.TempDir(), "bad.yml", "website: [not: a map")
	_, err = wmyaml.LoadConfig(path)
	assert.Equal(t, webmirror.EPARSE, webmirror.ErrorCode(err))
}

func TestParseEnv_strips_quotes_and_comments(t *testing.T) {
	t.Parallel()

	env := wmyaml.ParseEnv("# credentials\n" +
		"CONFLUENCE_EMAIL=dev@example.com\n" +
		"CONFLUENCE_TOKEN=\"tok-123\"\n" +
		"CONFLUENCE_BASE_URL='https://example.atlassian.net'\n" +
		"\n" +
		"not a pair\n")

	assert.Equal(t, "dev@example.com", env["CONFLUENCE_EMAIL"])
	assert.Equal(t, "tok-123", env["CONFLUENCE_TOKEN"])
	assert.Equal(t, "https://example.atlassian.net", env["CONFLUENCE_BASE_URL"])
	assert.Len(t, env, 3)
}

func TestLoadCredentials_prefers_config_env(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("config", ".env"),
		"CONFLUENCE_EMAIL=primary@example.com\nCONFLUENCE_TOKEN=primary\nCONFLUENCE_BASE_URL=https://primary.atlassian.net\n")
	writeFile(t, dir, ".env",
		"CONFLUENCE_EMAIL=secondary@example.com\nCONFLUENCE_TOKEN=secondary\n")

	creds, err := wmyaml.LoadCredentials(dir, nil)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "primary@example.com", creds.Email)
	assert.Equal(t, "primary", creds.Token)
	assert.True(t, creds.Valid())
}

func TestLoadCredentials_legacy_token_file_uses_config_base_url(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "confluence_token.txt", "legacy-token\n")

	cfg := webmirror.DefaultConfig()
	cfg.Website.BaseURL = "https://legacy.atlassian.net"

	creds, err := wmyaml.LoadCredentials(dir, cfg)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "legacy-token", creds.Token)
	assert.Equal(t, "https://legacy.atlassian.net", creds.BaseURL)
	assert.False(t, creds.Valid(), "legacy source has no email")
}

func TestLoadCredentials_returns_nil_when_no_source_exists(t *testing.T) {
	t.Parallel()

	creds, err := wmyaml.LoadCredentials(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Nil(t, creds)
}
