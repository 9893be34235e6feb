package webmirror

import (
	"context"
	"time"
)

// FetchOutcome is the result of a successful driver fetch. A space-index
// outcome carries no persistable body; it only fans out links.
type FetchOutcome struct {
	// Body is the page HTML after link and attachment rewriting.
	Body string

	// StorageBody is the wiki storage-format body, when available.
	StorageBody string

	// Metadata is the structured page metadata (API mode only).
	Metadata *PageMetadata

	// Attachments lists the page attachments (API mode only).
	Attachments []*Attachment

	// Links are the admissible outbound page URLs, in clean form.
	Links []string

	// IsIndex marks a space-index outcome: fan-out only, never saved.
	IsIndex bool

	// PageID is the resolved page identifier, when known.
	PageID string

	// RawPayload is the verbatim API response (API mode only).
	RawPayload []byte

	// Title is the page title used in Markdown metadata headers.
	Title string
}

// SiteDriver encapsulates how a target site is fetched, parsed, and
// serialized. The engine is driver-agnostic; the HTML and wiki API modes
// are two implementations of this interface.
type SiteDriver interface {
	// Fetch retrieves and parses one page. Failures are application
	// errors whose code classifies the failure (EAUTH, ETIMEOUT, ...).
	Fetch(ctx context.Context, cleanURL string, depth int) (*FetchOutcome, error)

	// Save writes all artifacts derived from the outcome into the page's
	// local path. It returns an error unless every mandatory artifact
	// was written.
	Save(ctx context.Context, cleanURL string, outcome *FetchOutcome, localPath string) error
}

// PageMetadata is the structured metadata for a wiki page, bound 1:1 to a
// clean URL.
type PageMetadata struct {
	PageID    string
	CleanURL  string
	ARI       string
	Type      string
	Status    string
	Title     string
	SpaceKey  string
	SpaceName string

	Version VersionInfo
	Created ActorInfo
	Updated ActorInfo

	WebLink  string
	RestLink string
	TinyLink string

	// Derived statistics computed at fetch time.
	DaysSinceUpdate  *int
	HasAttachments   bool
	AttachmentCount  int
	ContentCharCount int
	HasTables        bool
}

// VersionInfo describes one wiki page version.
type VersionInfo struct {
	Number    int
	When      string
	By        string
	ByEmail   string
	ByAccount string
	Message   string
	MinorEdit bool
}

// ActorInfo describes who touched a page and when.
type ActorInfo struct {
	When      string
	By        string
	ByEmail   string
	ByAccount string
}

// Attachment is a binary asset associated with a wiki page.
type Attachment struct {
	ID            string
	PageID        string
	Title         string
	MediaType     string
	FileSize      int64 // API-reported
	FileSizeLocal int64
	Version       int
	CreatedWhen   string
	CreatedBy     string
	Comment       string
	DownloadURL   string
	LocalPath     string
	LocalFilename string
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressDownloaded
	ProgressIndexExpanded
	ProgressFailed
	ProgressResource
	ProgressFinished
)

// ProgressEvent reports engine progress to a display sink. Non-essential
// to correctness.
type ProgressEvent struct {
	Type       ProgressType
	URL        string
	LocalPath  string
	Err        error
	Downloaded int
	Failed     int
	Resources  int
	QueueLen   int
	Active     int
	Elapsed    time.Duration
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)
