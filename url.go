package webmirror

import (
	"net/url"
	"strings"
	"time"
)

// URLStatus represents the lifecycle state of a discovered URL.
type URLStatus string

// Lifecycle states. Transitions are monotone except that downloading may
// revert to failed; completed is terminal within a run.
const (
	StatusPending     URLStatus = "pending"
	StatusDownloading URLStatus = "downloading"
	StatusCompleted   URLStatus = "completed"
	StatusFailed      URLStatus = "failed"
)

// Valid returns true for a known lifecycle state.
func (s URLStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDownloading, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CleanURL normalizes a raw URL into the canonical deduplication key:
// scheme, authority, path, and query are kept; the fragment is dropped.
// Returns EINVALID if the URL cannot be parsed or has no host.
func CleanURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", Errorf(EINVALID, "cannot parse URL %q", raw)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", Errorf(EINVALID, "URL %q missing scheme or host", raw)
	}
	u.Fragment = ""
	return u.String(), nil
}

// ResolveURL resolves a possibly-relative href against a base URL and
// returns the clean form of the result.
func ResolveURL(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", Errorf(EINVALID, "cannot parse base URL %q", base)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", Errorf(EINVALID, "cannot parse href %q", href)
	}
	return CleanURL(b.ResolveReference(ref).String())
}

// DiscoveredURL is the durable lifecycle record for one unique clean URL.
type DiscoveredURL struct {
	RawURL       string    `json:"rawUrl"`
	CleanURL     string    `json:"cleanUrl"`
	Depth        int       `json:"depth"`
	DiscoveredAt time.Time `json:"discoveredAt"`
	ParentURL    string    `json:"parentUrl"`
	Status       URLStatus `json:"status"`
	RetryCount   int       `json:"retryCount"`
	ErrorMessage string    `json:"errorMessage"`
}

// Validate returns an error if the record contains invalid fields.
func (d *DiscoveredURL) Validate() error {
	if d.CleanURL == "" {
		return Errorf(EINVALID, "clean URL required")
	}
	if d.Depth < 0 {
		return Errorf(EINVALID, "depth must be non-negative")
	}
	if !d.Status.Valid() {
		return Errorf(EINVALID, "invalid status %q", d.Status)
	}
	return nil
}

// Link is a URL discovered on a page, pending admission.
type Link struct {
	RawURL    string
	CleanURL  string
	Depth     int
	ParentURL string
}

// PendingURL is a frontier work item loaded from the store.
type PendingURL struct {
	CleanURL string
	Depth    int
}
