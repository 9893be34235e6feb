package webmirror_test

import (
	"testing"

	"github.com/sjseo298/webmirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanURL_drops_fragment_and_keeps_query(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "fragment is stripped",
			raw:  "https://example.com/docs/page#section-2",
			want: "https://example.com/docs/page",
		},
		{
			name: "query survives",
			raw:  "https://example.com/pages/viewpage.action?pageId=12345#comment",
			want: "https://example.com/pages/viewpage.action?pageId=12345",
		},
		{
			name: "already clean URL is unchanged",
			raw:  "https://example.com/wiki/spaces/AR/overview",
			want: "https://example.com/wiki/spaces/AR/overview",
		},
		{
			name: "surrounding whitespace is trimmed",
			raw:  "  https://example.com/a  ",
			want: "https://example.com/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := webmirror.CleanURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanURL_rejects_invalid_URLs(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "/relative/only", "not a url at all ://"} {
		_, err := webmirror.CleanURL(raw)
		require.Error(t, err, "raw=%q", raw)
		assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(err))
	}
}

func TestResolveURL_resolves_relative_hrefs_against_base(t *testing.T) {
	t.Parallel()

	got, err := webmirror.ResolveURL("https://example.com/docs/guide/intro", "../api/reference#anchor")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/docs/api/reference", got)
}

func TestDiscoveredURL_Validate(t *testing.T) {
	t.Parallel()

	valid := webmirror.DiscoveredURL{
		CleanURL: "https://example.com/docs/a",
		Status:   webmirror.StatusPending,
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.CleanURL = ""
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(missing.Validate()))

	negative := valid
	negative.Depth = -1
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(negative.Validate()))

	badStatus := valid
	badStatus.Status = "queued"
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(badStatus.Validate()))
}
