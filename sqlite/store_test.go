package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/sjseo298/webmirror"
	"github.com/sjseo298/webmirror/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MustOpenDB returns an open in-memory database that closes with the test.
func MustOpenDB(tb testing.TB) *sqlite.DB {
	tb.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(tb, db.Open())
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStore_Admit_is_idempotent(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	link := webmirror.Link{
		RawURL:   "https://example.com/docs/a#frag",
		CleanURL: "https://example.com/docs/a",
		Depth:    0,
	}

	ok, err := s.Admit(ctx, link)
	require.NoError(t, err)
	assert.True(t, ok, "first admit inserts")

	ok, err = s.Admit(ctx, link)
	require.NoError(t, err)
	assert.False(t, ok, "second admit is a no-op")

	counts, err := s.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Discovered)
	assert.Equal(t, 1, counts.Pending)
}

func TestStore_AdmitBatch_counts_only_new_rows(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	_, err := s.Admit(ctx, webmirror.Link{CleanURL: "https://example.com/docs/a"})
	require.NoError(t, err)

	added, err := s.AdmitBatch(ctx, []webmirror.Link{
		{CleanURL: "https://example.com/docs/a", Depth: 1},
		{CleanURL: "https://example.com/docs/b", Depth: 1},
		{CleanURL: "https://example.com/docs/c", Depth: 1},
		{CleanURL: "https://example.com/docs/b", Depth: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
}

func TestStore_MarkDownloading_requires_pending_status(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	url := "https://example.com/docs/a"
	_, err := s.Admit(ctx, webmirror.Link{CleanURL: url})
	require.NoError(t, err)

	ok, err := s.MarkDownloading(ctx, url)
	require.NoError(t, err)
	assert.True(t, ok, "pending -> downloading succeeds")

	ok, err = s.MarkDownloading(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok, "downloading -> downloading is rejected")

	ok, err = s.MarkDownloading(ctx, "https://example.com/unknown")
	require.NoError(t, err)
	assert.False(t, ok, "unknown URL is rejected")
}

func TestStore_MarkCompleted_updates_status_document_and_mapping(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	url := "https://example.com/docs/a"
	_, err := s.Admit(ctx, webmirror.Link{CleanURL: url})
	require.NoError(t, err)
	_, err = s.MarkDownloading(ctx, url)
	require.NoError(t, err)

	err = s.MarkCompleted(ctx, &webmirror.DownloadedDocument{
		CleanURL:       url,
		LocalPath:      "out/docs/a/index.md",
		FileSize:       1234,
		DownloadTime:   0.8,
		Depth:          0,
		LinksExtracted: 7,
	})
	require.NoError(t, err)

	done, err := s.DownloadedURLs(ctx)
	require.NoError(t, err)
	assert.Contains(t, done, url)

	paths, err := s.URLToPath(ctx)
	require.NoError(t, err)
	assert.Equal(t, "out/docs/a/index.md", paths[url])

	count, bytes, err := s.DocumentTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(1234), bytes)

	counts, err := s.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Completed)
	assert.Equal(t, 0, counts.Pending)
}

func TestStore_MarkFailed_increments_retry_count(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	url := "https://example.com/docs/a"
	_, err := s.Admit(ctx, webmirror.Link{CleanURL: url})
	require.NoError(t, err)

	require.NoError(t, s.MarkFailed(ctx, url, "read deadline exceeded"))
	require.NoError(t, s.MarkFailed(ctx, url, "connection refused"))

	failures, err := s.RecentFailures(ctx, 5)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, url, failures[0].CleanURL)
	assert.Equal(t, 2, failures[0].RetryCount)
	assert.Equal(t, "connection refused", failures[0].ErrorMessage)
	assert.Equal(t, webmirror.StatusFailed, failures[0].Status)
}

func TestStore_MarkIndexed_completes_without_document(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	url := "https://host/wiki/spaces/AR/overview"
	_, err := s.Admit(ctx, webmirror.Link{CleanURL: url})
	require.NoError(t, err)
	_, err = s.MarkDownloading(ctx, url)
	require.NoError(t, err)
	require.NoError(t, s.MarkIndexed(ctx, url))

	done, err := s.DownloadedURLs(ctx)
	require.NoError(t, err)
	assert.Contains(t, done, url, "indexed URL is not re-fetched on resume")

	count, _, err := s.DocumentTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "index has no document row")
}

func TestStore_PendingURLs_orders_breadth_first(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	_, err := s.AdmitBatch(ctx, []webmirror.Link{
		{CleanURL: "https://example.com/d1-first", Depth: 1},
		{CleanURL: "https://example.com/d0", Depth: 0},
		{CleanURL: "https://example.com/d2", Depth: 2},
		{CleanURL: "https://example.com/d1-second", Depth: 1},
	})
	require.NoError(t, err)

	pending, err := s.PendingURLs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 4)
	assert.Equal(t, "https://example.com/d0", pending[0].CleanURL)
	assert.Equal(t, "https://example.com/d1-first", pending[1].CleanURL)
	assert.Equal(t, "https://example.com/d1-second", pending[2].CleanURL)
	assert.Equal(t, "https://example.com/d2", pending[3].CleanURL)

	limited, err := s.PendingURLs(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_resources_roundtrip(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	err := s.SaveResource(ctx, &webmirror.DownloadedResource{
		ResourceURL: "https://cdn.example.com/site.css",
		LocalPath:   "out/resources/site.css",
		Type:        webmirror.ResourceCSS,
		FileSize:    512,
		Shared:      true,
	})
	require.NoError(t, err)

	err = s.SaveResource(ctx, &webmirror.DownloadedResource{
		ResourceURL:  "https://example.com/att/file.pdf",
		LocalPath:    "out/spaces/AR/pages/1/attachments/1_file.pdf",
		Type:         webmirror.ResourceAttachment,
		FileSize:     2048,
		ReferencedBy: "https://example.com/docs/a",
	})
	require.NoError(t, err)

	urls, err := s.DownloadedResourceURLs(ctx)
	require.NoError(t, err)
	assert.Len(t, urls, 2)

	shared, err := s.SharedResources(ctx)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "out/resources/site.css", shared["https://cdn.example.com/site.css"])

	stats, err := s.ResourceCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[webmirror.ResourceCSS].Count)
	assert.Equal(t, int64(2048), stats[webmirror.ResourceAttachment].Bytes)
}

func TestStore_wiki_metadata_and_attachments(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	meta := &webmirror.PageMetadata{
		PageID:           "556040223",
		CleanURL:         "https://host/wiki/spaces/AR/pages/556040223/My+Page",
		Title:            "My Page",
		SpaceKey:         "AR",
		SpaceName:        "Architecture",
		Version:          webmirror.VersionInfo{Number: 4, When: "2026-01-02T03:04:05Z", By: "Jan"},
		Updated:          webmirror.ActorInfo{When: "2026-01-02T03:04:05Z", By: "Jan"},
		AttachmentCount:  2,
		ContentCharCount: 9000,
		HasTables:        true,
	}
	require.NoError(t, s.SavePageMetadata(ctx, meta))

	// Upsert keeps the row unique per page id.
	meta.Version.Number = 5
	require.NoError(t, s.SavePageMetadata(ctx, meta))

	require.NoError(t, s.SaveAttachment(ctx, &webmirror.Attachment{
		ID:        "att100",
		PageID:    "556040223",
		Title:     "diagram.png",
		MediaType: "image/png",
		FileSize:  4096,
	}))

	err := s.SavePageMetadata(ctx, &webmirror.PageMetadata{CleanURL: "https://x"})
	assert.Equal(t, webmirror.EINVALID, webmirror.ErrorCode(err))
}

func TestStore_sessions(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	started := time.Now().UTC()
	require.NoError(t, s.StartSession(ctx, "session-1", started))
	require.NoError(t, s.FinishSession(ctx, &webmirror.CrawlSession{
		ID:         "session-1",
		FinishedAt: started.Add(time.Minute),
		Downloaded: 10,
		Failed:     1,
		Resources:  4,
	}))
}

func TestStore_ResetProgress_truncates_everything(t *testing.T) {
	t.Parallel()
	s := sqlite.NewStore(MustOpenDB(t))
	ctx := context.Background()

	url := "https://example.com/docs/a"
	_, err := s.Admit(ctx, webmirror.Link{CleanURL: url})
	require.NoError(t, err)
	_, err = s.MarkDownloading(ctx, url)
	require.NoError(t, err)
	require.NoError(t, s.MarkCompleted(ctx, &webmirror.DownloadedDocument{
		CleanURL:  url,
		LocalPath: "out/a/index.md",
	}))

	require.NoError(t, s.ResetProgress(ctx))

	counts, err := s.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Discovered)

	paths, err := s.URLToPath(ctx)
	require.NoError(t, err)
	assert.Empty(t, paths)

	// Schema survives: inserts still work.
	ok, err := s.Admit(ctx, webmirror.Link{CleanURL: url})
	require.NoError(t, err)
	assert.True(t, ok)
}
