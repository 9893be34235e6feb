package webmirror

import (
	"context"
	"time"
)

// DownloadedDocument records a successfully mirrored page. A row exists iff
// the corresponding DiscoveredURL reached completed, and the artifact file
// is written to disk before the row is created.
type DownloadedDocument struct {
	CleanURL       string    `json:"cleanUrl"`
	LocalPath      string    `json:"localPath"`
	FileSize       int64     `json:"fileSize"`
	DownloadTime   float64   `json:"downloadTimeSeconds"`
	DownloadedAt   time.Time `json:"downloadedAt"`
	Depth          int       `json:"depth"`
	LinksExtracted int       `json:"linksExtractedCount"`
}

// Validate returns an error if the document contains invalid fields.
func (d *DownloadedDocument) Validate() error {
	if d.CleanURL == "" {
		return Errorf(EINVALID, "document clean URL required")
	}
	if d.LocalPath == "" {
		return Errorf(EINVALID, "document local path required")
	}
	return nil
}

// ResourceType classifies an auxiliary downloaded asset.
type ResourceType string

const (
	ResourceCSS        ResourceType = "css"
	ResourceJS         ResourceType = "js"
	ResourceImage      ResourceType = "image"
	ResourceFont       ResourceType = "font"
	ResourceAttachment ResourceType = "attachment"
	ResourceOther      ResourceType = "other"
)

// DownloadedResource records an auxiliary asset (stylesheet, image,
// attachment). Shared resources live in the run-wide pool and are persisted
// only once per URL.
type DownloadedResource struct {
	ResourceURL  string       `json:"resourceUrl"`
	LocalPath    string       `json:"localPath"`
	Type         ResourceType `json:"type"`
	FileSize     int64        `json:"fileSize"`
	ReferencedBy string       `json:"referencedBy"`
	Shared       bool         `json:"shared"`
}

// URLMapping is the denormalized clean URL to local path cache used for
// fast link rewriting.
type URLMapping struct {
	CleanURL  string `json:"cleanUrl"`
	LocalPath string `json:"localPath"`
}

// StatusCounts aggregates lifecycle totals for reporting.
type StatusCounts struct {
	Discovered  int
	Pending     int
	Downloading int
	Completed   int
	Failed      int
}

// CrawlSession records one engine run for reporting.
type CrawlSession struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Downloaded int
	Failed     int
	Resources  int
}

// CrawlStore is the durable record of every discovered URL's lifecycle.
// It is the sole source of truth for resume; in-memory sets held by the
// engine are warm caches repopulated from the store at startup.
type CrawlStore interface {
	// Admit idempotently inserts a pending URL. Returns true on a new row;
	// a URL whose clean form is already present is left untouched.
	Admit(ctx context.Context, link Link) (bool, error)

	// AdmitBatch admits many links in one transaction and returns the
	// number of new rows.
	AdmitBatch(ctx context.Context, links []Link) (int, error)

	// MarkDownloading performs the conditional pending->downloading
	// transition. Returns false if the current status is not pending.
	MarkDownloading(ctx context.Context, cleanURL string) (bool, error)

	// MarkCompleted atomically transitions the URL to completed, upserts
	// the document row, and upserts the URL mapping.
	MarkCompleted(ctx context.Context, doc *DownloadedDocument) error

	// MarkFailed transitions the URL to failed and increments retry_count.
	MarkFailed(ctx context.Context, cleanURL, message string) error

	// MarkIndexed retires a space-index URL: status moves to completed
	// without a document row, since an index carries no persistable body.
	MarkIndexed(ctx context.Context, cleanURL string) error

	// PendingURLs returns pending work ordered by depth ascending, then
	// discovery order ascending (breadth-first). limit <= 0 means all.
	PendingURLs(ctx context.Context, limit int) ([]PendingURL, error)

	// DownloadedURLs returns the set of completed clean URLs.
	DownloadedURLs(ctx context.Context) (map[string]struct{}, error)

	// URLToPath returns the clean URL to local path map.
	URLToPath(ctx context.Context) (map[string]string, error)

	// SaveResource upserts an auxiliary resource record.
	SaveResource(ctx context.Context, res *DownloadedResource) error

	// DownloadedResourceURLs returns the set of persisted resource URLs.
	DownloadedResourceURLs(ctx context.Context) (map[string]struct{}, error)

	// SharedResources returns the resource URL to local path map for
	// resources stored in the shared pool.
	SharedResources(ctx context.Context) (map[string]string, error)

	// StatusCounts returns aggregate lifecycle totals.
	StatusCounts(ctx context.Context) (*StatusCounts, error)

	// ResetProgress truncates all lifecycle tables, keeping the schema.
	ResetProgress(ctx context.Context) error
}

// WikiStore persists wiki page metadata and attachment records produced by
// the API driver.
type WikiStore interface {
	SavePageMetadata(ctx context.Context, meta *PageMetadata) error
	SaveAttachment(ctx context.Context, att *Attachment) error
}

// ReportStore exposes the queries behind the export and report commands.
type ReportStore interface {
	// URLsByStatus returns clean URLs in the given lifecycle state.
	URLsByStatus(ctx context.Context, status URLStatus) ([]string, error)

	// RecentFailures returns the most recently failed URLs with messages.
	RecentFailures(ctx context.Context, limit int) ([]*DiscoveredURL, error)

	// ResourceCounts returns per-type resource counts and byte totals.
	ResourceCounts(ctx context.Context) (map[ResourceType]ResourceStat, error)

	// DocumentTotals returns the completed document count and byte total.
	DocumentTotals(ctx context.Context) (count int, bytes int64, err error)
}

// ResourceStat aggregates resources of one type.
type ResourceStat struct {
	Count int
	Bytes int64
}

// SessionStore records engine runs.
type SessionStore interface {
	StartSession(ctx context.Context, id string, startedAt time.Time) error
	FinishSession(ctx context.Context, session *CrawlSession) error
}
