package confluence

import (
	"context"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sjseo298/webmirror"
	"github.com/sjseo298/webmirror/fs"
	gq "github.com/sjseo298/webmirror/goquery"
	"github.com/sjseo298/webmirror/htmltomarkdown"
	"gopkg.in/yaml.v3"
)

// spaceIndexRe matches a space-overview URL path: /spaces/<KEY> with an
// optional /overview suffix.
var spaceIndexRe = regexp.MustCompile(`(?:^|/)spaces/([A-Za-z0-9~._-]+)(?:/overview)?/?$`)

// wikiLinkMarkers identify hrefs that point at wiki pages.
var wikiLinkMarkers = []string{"/pages/", "/display/", "/viewpage.action", "/content/"}

var digitsRe = regexp.MustCompile(`^\d+$`)

// Store is the persistence surface the driver needs: wiki metadata plus
// attachment resource records.
type Store interface {
	webmirror.WikiStore
	SaveResource(ctx context.Context, res *webmirror.DownloadedResource) error
}

// Ensure Driver implements webmirror.SiteDriver at compile time.
var _ webmirror.SiteDriver = (*Driver)(nil)

// Driver is the wiki API site driver. Pages are resolved through the REST
// API rather than scraped; each saved page gets an artifact set of
// index.html, index.md, and optionally index.json, index.yml, and its
// attachment binaries.
type Driver struct {
	client    *Client
	store     Store
	policy    *webmirror.Policy
	mapper    *webmirror.PathMapper
	converter *htmltomarkdown.Converter
	writer    *fs.Writer

	// Output toggles the optional artifacts.
	Output webmirror.ConfluenceOutputConfig
}

// NewDriver creates a wiki API driver with all optional artifacts enabled.
func NewDriver(client *Client, store Store, policy *webmirror.Policy, mapper *webmirror.PathMapper) *Driver {
	return &Driver{
		client:    client,
		store:     store,
		policy:    policy,
		mapper:    mapper,
		converter: htmltomarkdown.NewConverter(),
		writer:    fs.NewWriter(),
		Output: webmirror.ConfluenceOutputConfig{
			SaveAPIResponse: true,
			SaveMetadataYML: true,
			SaveAttachments: true,
		},
	}
}

// SpaceIndexKey extracts the space key from a space-overview URL.
func SpaceIndexKey(cleanURL string) (string, bool) {
	u, err := url.Parse(cleanURL)
	if err != nil {
		return "", false
	}
	match := spaceIndexRe.FindStringSubmatch(u.Path)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// Fetch resolves one URL through the API. A space-overview URL expands to
// the full page list of the space and is never persisted itself.
func (d *Driver) Fetch(ctx context.Context, cleanURL string, depth int) (*webmirror.FetchOutcome, error) {
	if key, ok := SpaceIndexKey(cleanURL); ok {
		return d.fetchSpaceIndex(ctx, key)
	}

	id, err := d.resolvePageID(ctx, cleanURL)
	if err != nil {
		return nil, err
	}

	content, raw, err := d.client.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := ExtractMetadata(content, cleanURL, d.client.ResolveLink)

	results, err := d.client.Attachments(ctx, id)
	if err != nil {
		return nil, err
	}
	attachments := make([]*webmirror.Attachment, 0, len(results))
	for _, r := range results {
		attachments = append(attachments, &webmirror.Attachment{
			ID:            r.ID,
			PageID:        id,
			Title:         r.Title,
			MediaType:     r.Metadata.MediaType,
			FileSize:      r.Extensions.FileSize,
			Version:       r.Version.Number,
			CreatedWhen:   r.Version.When,
			CreatedBy:     r.Version.By.DisplayName,
			Comment:       r.Extensions.Comment,
			DownloadURL:   r.Links.Download,
			LocalFilename: AttachmentFilename(r.ID, r.Title),
		})
	}
	meta.AttachmentCount = len(attachments)
	meta.HasAttachments = len(attachments) > 0

	return &webmirror.FetchOutcome{
		Body:        content.Body.View.Value,
		StorageBody: content.Body.Storage.Value,
		Metadata:    meta,
		Attachments: attachments,
		Links:       d.extractLinks(content, cleanURL, depth),
		PageID:      id,
		RawPayload:  raw,
		Title:       content.Title,
	}, nil
}

// Save writes the page artifact set. Space-index outcomes carry nothing to
// save.
func (d *Driver) Save(ctx context.Context, cleanURL string, outcome *webmirror.FetchOutcome, localPath string) error {
	if outcome.IsIndex {
		return nil
	}

	meta := outcome.Metadata
	pageDir := filepath.Dir(localPath)

	var saved []*webmirror.Attachment
	if d.Output.SaveAttachments {
		for _, a := range outcome.Attachments {
			// A page may reference attachments deleted upstream; a 404
			// download is tolerated and the attachment is omitted.
			if err := d.downloadAttachment(ctx, a, pageDir, cleanURL); err != nil {
				continue
			}
			saved = append(saved, a)
		}
	}

	rewritten := RewriteAttachmentURLs(outcome.Body, saved)

	if err := d.writer.WriteString(filepath.Join(pageDir, "index.html"), rewritten); err != nil {
		return err
	}

	md := htmltomarkdown.WikiHeader(meta.Title, meta.SpaceKey, meta.PageID, meta.Updated.When)
	if strings.TrimSpace(rewritten) != "" {
		body, err := d.converter.Convert(rewritten)
		if err != nil {
			return err
		}
		md += body
	}
	if err := d.writer.WriteString(filepath.Join(pageDir, "index.md"), md); err != nil {
		return err
	}

	if d.Output.SaveAPIResponse && len(outcome.RawPayload) > 0 {
		if err := d.writer.WriteFile(filepath.Join(pageDir, "index.json"), outcome.RawPayload); err != nil {
			return err
		}
	}

	if d.Output.SaveMetadataYML {
		doc := BuildMetadataDoc(meta, saved, pageDir, d.client.ContentURL(meta.PageID))
		data, err := yaml.Marshal(doc)
		if err != nil {
			return webmirror.Errorf(webmirror.EINTERNAL, "cannot marshal metadata for %s: %v", cleanURL, err)
		}
		if err := d.writer.WriteFile(filepath.Join(pageDir, "index.yml"), data); err != nil {
			return err
		}
	}

	return d.store.SavePageMetadata(ctx, meta)
}

func (d *Driver) fetchSpaceIndex(ctx context.Context, spaceKey string) (*webmirror.FetchOutcome, error) {
	pages, err := d.client.SearchSpacePages(ctx, spaceKey)
	if err != nil {
		return nil, err
	}

	var links []string
	for _, page := range pages {
		clean, err := webmirror.CleanURL(page)
		if err != nil {
			continue
		}
		if d.policy.Admit(clean, 0) {
			links = append(links, clean)
		}
	}
	return &webmirror.FetchOutcome{IsIndex: true, Links: links}, nil
}

// resolvePageID extracts a numeric page id from the URL, falling back to a
// CQL title search on the last path segment.
func (d *Driver) resolvePageID(ctx context.Context, cleanURL string) (string, error) {
	if id := d.mapper.PageID(cleanURL); digitsRe.MatchString(id) {
		return id, nil
	}

	title, spaceKey := titleFromURL(cleanURL)
	if title == "" {
		return "", webmirror.Errorf(webmirror.EINVALID, "cannot derive a page id from %s", cleanURL)
	}
	return d.client.SearchPageByTitle(ctx, spaceKey, title)
}

// titleFromURL decodes the last path segment into a probable page title
// and picks up the space key when the URL carries one.
func titleFromURL(cleanURL string) (title, spaceKey string) {
	u, err := url.Parse(cleanURL)
	if err != nil {
		return "", ""
	}

	if match := regexp.MustCompile(`/spaces/([A-Za-z0-9~._-]+)/`).FindStringSubmatch(u.Path); match != nil {
		spaceKey = match[1]
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		segment := strings.ReplaceAll(segments[i], "+", " ")
		if decoded, err := url.PathUnescape(segment); err == nil {
			segment = decoded
		}
		return segment, spaceKey
	}
	return "", spaceKey
}

// extractLinks unions page-like hrefs from the rendered body with the
// page's API-listed children, deduplicated in discovery order.
func (d *Driver) extractLinks(content *Content, cleanURL string, depth int) []string {
	seen := make(map[string]struct{})
	var links []string

	admit := func(candidate string) {
		clean, err := webmirror.CleanURL(candidate)
		if err != nil {
			return
		}
		if _, dup := seen[clean]; dup {
			return
		}
		if !d.policy.Admit(clean, depth+1) {
			return
		}
		seen[clean] = struct{}{}
		links = append(links, clean)
	}

	if doc, err := gq.Parse(content.Body.View.Value); err == nil {
		for _, href := range gq.ExtractLinks(doc, cleanURL) {
			if looksLikeWikiPage(href) {
				admit(href)
			}
		}
	}

	for _, child := range content.Children.Page.Results {
		if child.Links.WebUI != "" {
			admit(d.client.ResolveLink(child.Links.WebUI))
		}
	}
	return links
}

func looksLikeWikiPage(href string) bool {
	for _, marker := range wikiLinkMarkers {
		if strings.Contains(href, marker) {
			return true
		}
	}
	return false
}

func (d *Driver) downloadAttachment(ctx context.Context, a *webmirror.Attachment, pageDir, cleanURL string) error {
	body, err := d.client.Download(ctx, a.DownloadURL)
	if err != nil {
		return err
	}
	defer body.Close()

	a.LocalPath = filepath.Join(pageDir, "attachments", a.LocalFilename)
	if _, err := d.writer.WriteStream(a.LocalPath, body); err != nil {
		return err
	}
	// On-disk size after close, not the stream count.
	a.FileSizeLocal = d.writer.Size(a.LocalPath)

	if err := d.store.SaveAttachment(ctx, a); err != nil {
		return err
	}
	return d.store.SaveResource(ctx, &webmirror.DownloadedResource{
		ResourceURL:  d.client.ResolveLink(a.DownloadURL),
		LocalPath:    a.LocalPath,
		Type:         webmirror.ResourceAttachment,
		FileSize:     a.FileSizeLocal,
		ReferencedBy: cleanURL,
		Shared:       false,
	})
}
