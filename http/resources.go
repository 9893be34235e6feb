package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sjseo298/webmirror"
	"github.com/sjseo298/webmirror/fs"
)

// cdnHosts are asset hosts whose downloads go into a cdn_images subfolder
// of the shared pool.
var cdnHosts = []string{
	"media-cdn.atlassian.com",
	"avatar-management--avatars.us-west-2.prod.public.atl-paas.net",
	"secure.gravatar.com",
}

// ResourcePool downloads auxiliary assets (stylesheets, images) into a
// run-wide shared directory. Each resource URL is persisted at most once;
// concurrent requests for the same URL are collapsed by an in-flight
// reservation.
type ResourcePool struct {
	client *http.Client
	store  webmirror.CrawlStore
	writer *fs.Writer

	// Dir is the shared pool directory.
	Dir string

	// AllowedHosts restricts which hosts resources may be fetched from.
	// Empty means any host.
	AllowedHosts []string

	// Notify, when set, is called once per newly persisted resource.
	Notify func(resourceURL string)

	mu     sync.Mutex
	local  map[string]string   // resource URL -> local path
	active map[string]struct{} // in-flight downloads
	names  map[string]string   // taken filename -> resource URL
}

// NewResourcePool creates a pool rooted at dir. Previously downloaded
// resources are reloaded from the store so a resumed crawl does not fetch
// them again.
func NewResourcePool(ctx context.Context, client *http.Client, store webmirror.CrawlStore, dir string) (*ResourcePool, error) {
	shared, err := store.SharedResources(ctx)
	if err != nil {
		return nil, err
	}

	p := &ResourcePool{
		client: client,
		store:  store,
		writer: fs.NewWriter(),
		Dir:    dir,
		local:  make(map[string]string, len(shared)),
		active: make(map[string]struct{}),
		names:  make(map[string]string, len(shared)),
	}
	for resourceURL, localPath := range shared {
		p.local[resourceURL] = localPath
		p.names[filepath.Base(localPath)] = resourceURL
	}
	return p, nil
}

// Download fetches resourceURL into the pool and returns its local path.
// Returns false when the host is not allowed, the URL is already being
// fetched by another worker, or the download fails; the caller then leaves
// the original reference in place.
func (p *ResourcePool) Download(ctx context.Context, resourceURL string, kind webmirror.ResourceType, referrer string) (string, bool) {
	u, err := url.Parse(resourceURL)
	if err != nil || !p.hostAllowed(u.Hostname()) {
		return "", false
	}

	p.mu.Lock()
	if localPath, ok := p.local[resourceURL]; ok {
		p.mu.Unlock()
		return localPath, true
	}
	if _, busy := p.active[resourceURL]; busy {
		p.mu.Unlock()
		return "", false
	}
	p.active[resourceURL] = struct{}{}
	localPath := p.reserveName(resourceURL, u)
	p.mu.Unlock()

	size, err := p.fetch(ctx, resourceURL, localPath)
	if err != nil {
		p.mu.Lock()
		delete(p.active, resourceURL)
		p.mu.Unlock()
		return "", false
	}

	err = p.store.SaveResource(ctx, &webmirror.DownloadedResource{
		ResourceURL:  resourceURL,
		LocalPath:    localPath,
		Type:         kind,
		FileSize:     size,
		ReferencedBy: referrer,
		Shared:       true,
	})

	p.mu.Lock()
	delete(p.active, resourceURL)
	if err == nil {
		p.local[resourceURL] = localPath
	}
	p.mu.Unlock()

	if err != nil {
		return "", false
	}
	if p.Notify != nil {
		p.Notify(resourceURL)
	}
	return localPath, true
}

// Count returns how many resources the pool has persisted.
func (p *ResourcePool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.local)
}

func (p *ResourcePool) fetch(ctx context.Context, resourceURL, localPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, webmirror.Errorf(webmirror.EPROTOCOL, "HTTP %d for resource %s", resp.StatusCode, resourceURL)
	}
	return p.writer.WriteStream(localPath, resp.Body)
}

func (p *ResourcePool) hostAllowed(host string) bool {
	if len(p.AllowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, allowed := range p.AllowedHosts {
		if strings.Contains(host, strings.ToLower(allowed)) {
			return true
		}
	}
	return false
}

// reserveName picks a collision-free filename for the resource. Must be
// called with the mutex held.
func (p *ResourcePool) reserveName(resourceURL string, u *url.URL) string {
	name := sanitizeFilename(path.Base(u.Path))
	if name == "" || name == "." || name == "/" {
		name = fmt.Sprintf("%016x", xxhash.Sum64String(resourceURL))
	}
	if owner, taken := p.names[name]; taken && owner != resourceURL {
		name = fmt.Sprintf("%08x_%s", xxhash.Sum64String(resourceURL)&0xffffffff, name)
	}
	p.names[name] = resourceURL

	if isCDNHost(u.Hostname()) {
		return filepath.Join(p.Dir, "cdn_images", name)
	}
	return filepath.Join(p.Dir, name)
}

func isCDNHost(host string) bool {
	host = strings.ToLower(host)
	for _, cdn := range cdnHosts {
		if host == cdn {
			return true
		}
	}
	return false
}

var filenameReserved = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_", `\`, "_", "|", "_", "?", "_", "*", "_", " ", "_",
)

func sanitizeFilename(name string) string {
	return filenameReserved.Replace(strings.TrimSpace(name))
}
