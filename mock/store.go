package mock

import (
	"context"

	"github.com/sjseo298/webmirror"
)

var _ webmirror.CrawlStore = (*CrawlStore)(nil)

// CrawlStore is a mock implementation of webmirror.CrawlStore.
type CrawlStore struct {
	AdmitFn                  func(ctx context.Context, link webmirror.Link) (bool, error)
	AdmitBatchFn             func(ctx context.Context, links []webmirror.Link) (int, error)
	MarkDownloadingFn        func(ctx context.Context, cleanURL string) (bool, error)
	MarkCompletedFn          func(ctx context.Context, doc *webmirror.DownloadedDocument) error
	MarkFailedFn             func(ctx context.Context, cleanURL, message string) error
	MarkIndexedFn            func(ctx context.Context, cleanURL string) error
	PendingURLsFn            func(ctx context.Context, limit int) ([]webmirror.PendingURL, error)
	DownloadedURLsFn         func(ctx context.Context) (map[string]struct{}, error)
	URLToPathFn              func(ctx context.Context) (map[string]string, error)
	SaveResourceFn           func(ctx context.Context, res *webmirror.DownloadedResource) error
	DownloadedResourceURLsFn func(ctx context.Context) (map[string]struct{}, error)
	SharedResourcesFn        func(ctx context.Context) (map[string]string, error)
	StatusCountsFn           func(ctx context.Context) (*webmirror.StatusCounts, error)
	ResetProgressFn          func(ctx context.Context) error
}

func (s *CrawlStore) Admit(ctx context.Context, link webmirror.Link) (bool, error) {
	return s.AdmitFn(ctx, link)
}

func (s *CrawlStore) AdmitBatch(ctx context.Context, links []webmirror.Link) (int, error) {
	return s.AdmitBatchFn(ctx, links)
}

func (s *CrawlStore) MarkDownloading(ctx context.Context, cleanURL string) (bool, error) {
	return s.MarkDownloadingFn(ctx, cleanURL)
}

func (s *CrawlStore) MarkCompleted(ctx context.Context, doc *webmirror.DownloadedDocument) error {
	return s.MarkCompletedFn(ctx, doc)
}

func (s *CrawlStore) MarkFailed(ctx context.Context, cleanURL, message string) error {
	return s.MarkFailedFn(ctx, cleanURL, message)
}

func (s *CrawlStore) MarkIndexed(ctx context.Context, cleanURL string) error {
	return s.MarkIndexedFn(ctx, cleanURL)
}

func (s *CrawlStore) PendingURLs(ctx context.Context, limit int) ([]webmirror.PendingURL, error) {
	return s.PendingURLsFn(ctx, limit)
}

func (s *CrawlStore) DownloadedURLs(ctx context.Context) (map[string]struct{}, error) {
	return s.DownloadedURLsFn(ctx)
}

func (s *CrawlStore) URLToPath(ctx context.Context) (map[string]string, error) {
	return s.URLToPathFn(ctx)
}

func (s *CrawlStore) SaveResource(ctx context.Context, res *webmirror.DownloadedResource) error {
	return s.SaveResourceFn(ctx, res)
}

func (s *CrawlStore) DownloadedResourceURLs(ctx context.Context) (map[string]struct{}, error) {
	return s.DownloadedResourceURLsFn(ctx)
}

func (s *CrawlStore) SharedResources(ctx context.Context) (map[string]string, error) {
	return s.SharedResourcesFn(ctx)
}

func (s *CrawlStore) StatusCounts(ctx context.Context) (*webmirror.StatusCounts, error) {
	return s.StatusCountsFn(ctx)
}

func (s *CrawlStore) ResetProgress(ctx context.Context) error {
	return s.ResetProgressFn(ctx)
}
