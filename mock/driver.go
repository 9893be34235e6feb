// Package mock provides hand-written mocks for webmirror interfaces.
package mock

import (
	"context"

	"github.com/sjseo298/webmirror"
)

var _ webmirror.SiteDriver = (*SiteDriver)(nil)

// SiteDriver is a mock implementation of webmirror.SiteDriver.
type SiteDriver struct {
	FetchFn func(ctx context.Context, cleanURL string, depth int) (*webmirror.FetchOutcome, error)
	SaveFn  func(ctx context.Context, cleanURL string, outcome *webmirror.FetchOutcome, localPath string) error
}

func (d *SiteDriver) Fetch(ctx context.Context, cleanURL string, depth int) (*webmirror.FetchOutcome, error) {
	return d.FetchFn(ctx, cleanURL, depth)
}

func (d *SiteDriver) Save(ctx context.Context, cleanURL string, outcome *webmirror.FetchOutcome, localPath string) error {
	if d.SaveFn == nil {
		return nil
	}
	return d.SaveFn(ctx, cleanURL, outcome, localPath)
}
