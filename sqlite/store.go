package sqlite

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sjseo298/webmirror"
)

// Compile-time interface verification.
var (
	_ webmirror.CrawlStore   = (*Store)(nil)
	_ webmirror.WikiStore    = (*Store)(nil)
	_ webmirror.ReportStore  = (*Store)(nil)
	_ webmirror.SessionStore = (*Store)(nil)
)

// Store is the SQLite-backed implementation of the crawl store. Every call
// is serialized by a per-store mutex and multi-statement operations run in
// a single transaction, so the store is safe for concurrent workers.
type Store struct {
	mu sync.Mutex
	db *DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Admit idempotently inserts a pending URL. Returns true on a new row.
func (s *Store) Admit(ctx context.Context, link webmirror.Link) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admit(ctx, s.db, link)
}

// AdmitBatch admits many links in one transaction; returns the insert count.
func (s *Store) AdmitBatch(ctx context.Context, links []webmirror.Link) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var added int
	for _, link := range links {
		ok, err := s.admit(ctx, tx, link)
		if err != nil {
			return 0, err
		}
		if ok {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// execer abstracts *DB and *sql.Tx for shared statement helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) admit(ctx context.Context, e execer, link webmirror.Link) (bool, error) {
	if link.CleanURL == "" {
		return false, webmirror.Errorf(webmirror.EINVALID, "clean URL required")
	}
	if link.Depth < 0 {
		return false, webmirror.Errorf(webmirror.EINVALID, "depth must be non-negative")
	}
	raw := link.RawURL
	if raw == "" {
		raw = link.CleanURL
	}

	result, err := e.ExecContext(ctx, `
		INSERT OR IGNORE INTO discovered_urls
			(raw_url, clean_url, depth, discovered_at, parent_clean_url, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		raw,
		link.CleanURL,
		link.Depth,
		formatTime(time.Now().UTC()),
		nullString(link.ParentURL),
		string(webmirror.StatusPending),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkDownloading performs the conditional pending->downloading transition.
func (s *Store) MarkDownloading(ctx context.Context, cleanURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE discovered_urls SET status = ?
		WHERE clean_url = ? AND status = ?`,
		string(webmirror.StatusDownloading), cleanURL, string(webmirror.StatusPending),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkCompleted atomically transitions the URL to completed, upserts the
// document row, and upserts the URL mapping.
func (s *Store) MarkCompleted(ctx context.Context, doc *webmirror.DownloadedDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE discovered_urls SET status = ?, error_message = ''
		WHERE clean_url = ?`,
		string(webmirror.StatusCompleted), doc.CleanURL,
	); err != nil {
		return err
	}

	downloadedAt := doc.DownloadedAt
	if downloadedAt.IsZero() {
		downloadedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO downloaded_documents
			(clean_url, local_path, file_size, download_time_seconds, downloaded_at, depth, links_extracted_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(clean_url) DO UPDATE SET
			local_path = excluded.local_path,
			file_size = excluded.file_size,
			download_time_seconds = excluded.download_time_seconds,
			downloaded_at = excluded.downloaded_at,
			depth = excluded.depth,
			links_extracted_count = excluded.links_extracted_count`,
		doc.CleanURL, doc.LocalPath, doc.FileSize, doc.DownloadTime,
		formatTime(downloadedAt), doc.Depth, doc.LinksExtracted,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO url_mappings (clean_url, local_path)
		VALUES (?, ?)
		ON CONFLICT(clean_url) DO UPDATE SET local_path = excluded.local_path`,
		doc.CleanURL, doc.LocalPath,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// MarkFailed transitions the URL to failed and increments retry_count.
func (s *Store) MarkFailed(ctx context.Context, cleanURL, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE discovered_urls
		SET status = ?, error_message = ?, retry_count = retry_count + 1
		WHERE clean_url = ?`,
		string(webmirror.StatusFailed), message, cleanURL,
	)
	return err
}

// MarkIndexed retires a space-index URL without a document row.
func (s *Store) MarkIndexed(ctx context.Context, cleanURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE discovered_urls SET status = ?, error_message = ''
		WHERE clean_url = ?`,
		string(webmirror.StatusCompleted), cleanURL,
	)
	return err
}

// PendingURLs returns pending work ordered by depth ascending, then
// discovery order ascending (breadth-first). limit <= 0 returns all.
func (s *Store) PendingURLs(ctx context.Context, limit int) ([]webmirror.PendingURL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT clean_url, depth FROM discovered_urls
		WHERE status = ?
		ORDER BY depth ASC, id ASC`
	args := []any{string(webmirror.StatusPending)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []webmirror.PendingURL
	for rows.Next() {
		var p webmirror.PendingURL
		if err := rows.Scan(&p.CleanURL, &p.Depth); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// DownloadedURLs returns the set of completed clean URLs.
func (s *Store) DownloadedURLs(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT clean_url FROM discovered_urls WHERE status = ?`,
		string(webmirror.StatusCompleted),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		set[u] = struct{}{}
	}
	return set, rows.Err()
}

// URLToPath returns the clean URL to local path map.
func (s *Store) URLToPath(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT clean_url, local_path FROM url_mappings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var mapping webmirror.URLMapping
		if err := rows.Scan(&mapping.CleanURL, &mapping.LocalPath); err != nil {
			return nil, err
		}
		m[mapping.CleanURL] = mapping.LocalPath
	}
	return m, rows.Err()
}

// SaveResource upserts an auxiliary resource record.
func (s *Store) SaveResource(ctx context.Context, res *webmirror.DownloadedResource) error {
	if res.ResourceURL == "" {
		return webmirror.Errorf(webmirror.EINVALID, "resource URL required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO downloaded_resources
			(resource_url, local_path, resource_type, file_size, referenced_by, is_shared)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(resource_url) DO UPDATE SET
			local_path = excluded.local_path,
			resource_type = excluded.resource_type,
			file_size = excluded.file_size,
			is_shared = excluded.is_shared`,
		res.ResourceURL, res.LocalPath, string(res.Type), res.FileSize,
		nullString(res.ReferencedBy), boolInt(res.Shared),
	)
	return err
}

// DownloadedResourceURLs returns the set of persisted resource URLs.
func (s *Store) DownloadedResourceURLs(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT resource_url FROM downloaded_resources`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		set[u] = struct{}{}
	}
	return set, rows.Err()
}

// SharedResources returns the resource URL to local path map for shared
// pool resources.
func (s *Store) SharedResources(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_url, local_path FROM downloaded_resources WHERE is_shared = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var u, p string
		if err := rows.Scan(&u, &p); err != nil {
			return nil, err
		}
		m[u] = p
	}
	return m, rows.Err()
}

// StatusCounts returns aggregate lifecycle totals.
func (s *Store) StatusCounts(ctx context.Context) (*webmirror.StatusCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM discovered_urls GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := &webmirror.StatusCounts{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts.Discovered += n
		switch webmirror.URLStatus(status) {
		case webmirror.StatusPending:
			counts.Pending = n
		case webmirror.StatusDownloading:
			counts.Downloading = n
		case webmirror.StatusCompleted:
			counts.Completed = n
		case webmirror.StatusFailed:
			counts.Failed = n
		}
	}
	return counts, rows.Err()
}

// ResetProgress truncates all lifecycle tables, keeping the schema.
func (s *Store) ResetProgress(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{
		"discovered_urls",
		"downloaded_documents",
		"downloaded_resources",
		"url_mappings",
		"wiki_pages",
		"wiki_attachments",
		"crawl_sessions",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
