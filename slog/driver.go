// Package slog provides logging decorators for the site driver boundary.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/sjseo298/webmirror"
)

// Ensure LoggingDriver implements webmirror.SiteDriver.
var _ webmirror.SiteDriver = (*LoggingDriver)(nil)

// LoggingDriver wraps a SiteDriver with structured logging of every fetch
// and save, including duration and failure classification.
type LoggingDriver struct {
	next   webmirror.SiteDriver
	logger *slog.Logger
}

// NewLoggingDriver creates a new LoggingDriver.
func NewLoggingDriver(next webmirror.SiteDriver, logger *slog.Logger) *LoggingDriver {
	return &LoggingDriver{next: next, logger: logger}
}

// Fetch delegates to the wrapped driver and logs the outcome.
func (d *LoggingDriver) Fetch(ctx context.Context, cleanURL string, depth int) (*webmirror.FetchOutcome, error) {
	begin := time.Now()
	outcome, err := d.next.Fetch(ctx, cleanURL, depth)
	if err != nil {
		d.logger.Warn("fetch failed",
			"url", cleanURL,
			"depth", depth,
			"code", webmirror.ErrorCode(err),
			"err", webmirror.ErrorMessage(err),
			"duration", time.Since(begin),
		)
		return nil, err
	}

	d.logger.Debug("fetch",
		"url", cleanURL,
		"depth", depth,
		"links", len(outcome.Links),
		"index", outcome.IsIndex,
		"duration", time.Since(begin),
	)
	return outcome, nil
}

// Save delegates to the wrapped driver and logs the outcome.
func (d *LoggingDriver) Save(ctx context.Context, cleanURL string, outcome *webmirror.FetchOutcome, localPath string) error {
	begin := time.Now()
	err := d.next.Save(ctx, cleanURL, outcome, localPath)
	if err != nil {
		d.logger.Warn("save failed",
			"url", cleanURL,
			"path", localPath,
			"code", webmirror.ErrorCode(err),
			"err", webmirror.ErrorMessage(err),
			"duration", time.Since(begin),
		)
		return err
	}

	d.logger.Debug("save",
		"url", cleanURL,
		"path", localPath,
		"attachments", len(outcome.Attachments),
		"duration", time.Since(begin),
	)
	return nil
}
