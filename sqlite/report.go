package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sjseo298/webmirror"
)

// URLsByStatus returns clean URLs in the given lifecycle state, in
// discovery order.
func (s *Store) URLsByStatus(ctx context.Context, status webmirror.URLStatus) ([]string, error) {
	if !status.Valid() {
		return nil, webmirror.Errorf(webmirror.EINVALID, "invalid status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT clean_url FROM discovered_urls WHERE status = ? ORDER BY id ASC`,
		string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// RecentFailures returns the most recently failed URLs with messages.
func (s *Store) RecentFailures(ctx context.Context, limit int) ([]*webmirror.DiscoveredURL, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT raw_url, clean_url, depth, discovered_at, parent_clean_url,
		       status, retry_count, error_message
		FROM discovered_urls
		WHERE status = ?
		ORDER BY id DESC
		LIMIT ?`,
		string(webmirror.StatusFailed), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []*webmirror.DiscoveredURL
	for rows.Next() {
		var d webmirror.DiscoveredURL
		var status, discoveredAt string
		var parent sql.NullString
		if err := rows.Scan(&d.RawURL, &d.CleanURL, &d.Depth, &discoveredAt,
			&parent, &status, &d.RetryCount, &d.ErrorMessage); err != nil {
			return nil, err
		}
		d.Status = webmirror.URLStatus(status)
		d.ParentURL = parent.String
		if t, err := time.Parse(time.RFC3339Nano, discoveredAt); err == nil {
			d.DiscoveredAt = t
		}
		failures = append(failures, &d)
	}
	return failures, rows.Err()
}

// ResourceCounts returns per-type resource counts and byte totals.
func (s *Store) ResourceCounts(ctx context.Context) (map[webmirror.ResourceType]webmirror.ResourceStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_type, COUNT(*), COALESCE(SUM(file_size), 0)
		FROM downloaded_resources GROUP BY resource_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[webmirror.ResourceType]webmirror.ResourceStat)
	for rows.Next() {
		var typ string
		var stat webmirror.ResourceStat
		if err := rows.Scan(&typ, &stat.Count, &stat.Bytes); err != nil {
			return nil, err
		}
		stats[webmirror.ResourceType(typ)] = stat
	}
	return stats, rows.Err()
}

// DocumentTotals returns the completed document count and byte total.
func (s *Store) DocumentTotals(ctx context.Context) (int, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	var bytes int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM downloaded_documents`,
	).Scan(&count, &bytes)
	return count, bytes, err
}

// StartSession records the start of an engine run.
func (s *Store) StartSession(ctx context.Context, id string, startedAt time.Time) error {
	if id == "" {
		return webmirror.Errorf(webmirror.EINVALID, "session id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_sessions (id, started_at) VALUES (?, ?)`,
		id, formatTime(startedAt.UTC()),
	)
	return err
}

// FinishSession records the end of an engine run and its totals.
func (s *Store) FinishSession(ctx context.Context, session *webmirror.CrawlSession) error {
	if session.ID == "" {
		return webmirror.Errorf(webmirror.EINVALID, "session id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE crawl_sessions
		SET finished_at = ?, downloaded = ?, failed = ?, resources = ?
		WHERE id = ?`,
		formatTime(session.FinishedAt.UTC()), session.Downloaded, session.Failed,
		session.Resources, session.ID,
	)
	return err
}
