package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/sjseo298/webmirror/cmd/webmirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return context.Background()
}

// newTestSite serves three pages linked in a chain, padded past the
// login-stub detection floor.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	padding := "<!-- " + strings.Repeat("x", 600) + " -->"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/docs/start":
			fmt.Fprintf(w, `<html><head><title>Start</title></head><body><div id="main-content"><a href="/docs/a">A</a><a href="/docs/b">B</a></div>%s</body></html>`, padding)
		case "/docs/a", "/docs/b":
			fmt.Fprintf(w, `<html><head><title>Leaf</title></head><body><div id="main-content"><p>leaf content</p></div>%s</body></html>`, padding)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir, siteURL string) string {
	t.Helper()

	u, err := url.Parse(siteURL)
	require.NoError(t, err)

	content := fmt.Sprintf(`
website:
  base_url: %[1]s
  base_domain: %[2]s
  start_url: %[1]s/docs/start
  confluence:
    is_confluence: "false"
crawling:
  max_depth: 2
  max_workers: 2
output:
  format: markdown
  output_dir: %[3]s
files:
  database_file: %[4]s
`, siteURL, u.Host,
		filepath.Join(dir, "out"),
		filepath.Join(dir, "crawl.db"))

	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_crawl_then_report_and_export(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	m := main.NewMain()
	err := m.Run(testContext(), []string{"crawl", "--config", cfgPath, "--quiet"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Downloaded 3 pages")

	leaf, err := os.ReadFile(filepath.Join(dir, "out", "a", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(leaf), "leaf content")

	stdout.Reset()
	m = main.NewMain()
	err = m.Run(testContext(), []string{"report", "--config", cfgPath}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "completed")
	assert.Contains(t, stdout.String(), "Documents: 3")

	stdout.Reset()
	m = main.NewMain()
	err = m.Run(testContext(), []string{"export", "completed", "--config", cfgPath}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), srv.URL+"/docs/start")
	assert.Contains(t, stdout.String(), srv.URL+"/docs/a")
}

func TestRun_crawl_is_idempotent_on_resume(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL)

	m := main.NewMain()
	require.NoError(t, m.Run(testContext(), []string{"crawl", "--config", cfgPath, "-q"}, &bytes.Buffer{}, &bytes.Buffer{}))

	stdout := &bytes.Buffer{}
	m = main.NewMain()
	require.NoError(t, m.Run(testContext(), []string{"crawl", "--config", cfgPath, "-q"}, stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "Downloaded 0 pages", "a completed crawl re-fetches nothing")
}

func TestRun_reset_requires_force(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL)

	m := main.NewMain()
	require.NoError(t, m.Run(testContext(), []string{"crawl", "--config", cfgPath, "-q"}, &bytes.Buffer{}, &bytes.Buffer{}))

	stdout := &bytes.Buffer{}
	m = main.NewMain()
	require.NoError(t, m.Run(testContext(), []string{"reset", "--config", cfgPath}, stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "--force")

	stdout.Reset()
	m = main.NewMain()
	require.NoError(t, m.Run(testContext(), []string{"reset", "--config", cfgPath, "--force"}, stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "reset")

	// After a reset the crawl starts over.
	stdout.Reset()
	m = main.NewMain()
	require.NoError(t, m.Run(testContext(), []string{"crawl", "--config", cfgPath, "-q"}, stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "Downloaded 3 pages")
}

func TestRun_help_and_missing_config(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	m := main.NewMain()
	require.NoError(t, m.Run(testContext(), []string{"--help"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "Usage: webmirror")

	m = main.NewMain()
	err := m.Run(testContext(), []string{"report", "--config", filepath.Join(t.TempDir(), "absent.yml")}, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration")
}

func TestRun_no_args_shows_usage(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	m := main.NewMain()
	err := m.Run(testContext(), []string{}, stdout, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, stdout.String(), "Usage: webmirror")
}
