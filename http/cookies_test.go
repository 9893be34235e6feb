package http_test

import (
	"os"
	"path/filepath"
	"testing"

	webhttp "github.com/sjseo298/webmirror/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCookies_semicolon_format(t *testing.T) {
	t.Parallel()

	cookies := webhttp.ParseCookies("session=abc123; cloud.session.token=xyz; theme=dark")

	require.Len(t, cookies, 3)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "abc123", cookies[0].Value)
	assert.Equal(t, "cloud.session.token", cookies[1].Name)
	assert.Equal(t, "xyz", cookies[1].Value)
}

func TestParseCookies_netscape_format_skips_comments_and_blanks(t *testing.T) {
	t.Parallel()

	content := "# Netscape HTTP Cookie File\n" +
		"\n" +
		".example.com\tTRUE\t/\tTRUE\t1924905600\tsession\tabc123\n" +
		".example.com\tTRUE\t/\tFALSE\t0\ttheme\tdark\n" +
		"malformed line without tabs that is not a pair\n"

	cookies := webhttp.ParseCookies(content)

	require.Len(t, cookies, 2)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "abc123", cookies[0].Value)
	assert.Equal(t, "theme", cookies[1].Name)
	assert.Equal(t, "dark", cookies[1].Value)
}

func TestLoadCookieFile_missing_file_is_not_an_error(t *testing.T) {
	t.Parallel()

	cookies, err := webhttp.LoadCookieFile(filepath.Join(t.TempDir(), "absent.txt"))
	require.NoError(t, err)
	assert.Nil(t, cookies)
}

func TestLoadCookieFile_reads_and_parses(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(path, []byte("session=abc"), 0644))

	cookies, err := webhttp.LoadCookieFile(path)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
}
