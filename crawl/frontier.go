package crawl

import (
	"strings"
	"sync"

	"github.com/sjseo298/webmirror"
	"github.com/sjseo298/webmirror/bloom"
)

// Frontier is the in-memory FIFO of (clean URL, depth) pairs awaiting
// fetch, with Bloom-filter deduplication. It is safe for concurrent use.
//
// The frontier is always recoverable from the store: it is seeded from
// pending URLs on startup and is purely a scheduling structure.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []webmirror.PendingURL
}

// Sizing for the seen filter. The store's unique constraint catches the
// rare false positive escape.
const (
	frontierExpectedURLs      = 100000
	frontierFalsePositiveRate = 0.01
)

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		seen: bloom.NewFilter(frontierExpectedURLs, frontierFalsePositiveRate),
	}
}

// Push appends a URL to the queue. Returns false if the URL has already
// been seen. Fragments are stripped so URLs differing only by fragment are
// duplicates.
func (f *Frontier) Push(url string, depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.push(url, depth)
}

// PushMany appends many URLs at one depth and returns how many were new.
func (f *Frontier) PushMany(urls []string, depth int) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var added int
	for _, url := range urls {
		if f.push(url, depth) {
			added++
		}
	}
	return added
}

func (f *Frontier) push(url string, depth int) bool {
	url = stripFragment(url)
	if f.seen.Test(url) {
		return false
	}
	f.seen.Add(url)
	f.queue = append(f.queue, webmirror.PendingURL{CleanURL: url, Depth: depth})
	return true
}

// Pop removes and returns the oldest queued URL.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (webmirror.PendingURL, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return webmirror.PendingURL{}, false
	}
	item := f.queue[0]
	f.queue = f.queue[1:]
	return item, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been queued at some point.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(stripFragment(url))
}

// MarkSeen records a URL as seen without queueing it. Used on resume so
// completed pages are not re-enqueued.
func (f *Frontier) MarkSeen(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen.Add(stripFragment(url))
}

// SeenEstimate returns the approximate number of distinct URLs the
// frontier has seen, completed pages from resume included.
func (f *Frontier) SeenEstimate() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.EstimatedCount()
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
