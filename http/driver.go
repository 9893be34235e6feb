package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sjseo298/webmirror"
	"github.com/sjseo298/webmirror/fs"
	gq "github.com/sjseo298/webmirror/goquery"
	"github.com/sjseo298/webmirror/htmltomarkdown"
)

// authBodyMinBytes is the authentication heuristic floor: a 2xx response
// shorter than this is treated as a login redirect stub.
const authBodyMinBytes = 500

// defaultAuthMarkers are substrings whose presence in a 2xx body indicates
// the site served a login page instead of content.
var defaultAuthMarkers = []string{
	"Log in to continue",
	"login-form",
	"id=\"login\"",
	"Sign in to your account",
	"atlassian-account-login",
}

// Ensure Driver implements webmirror.SiteDriver at compile time.
var _ webmirror.SiteDriver = (*Driver)(nil)

// Driver is the HTML-mode site driver. It fetches pages over plain HTTP,
// extracts links, rewrites admissible links to their future local paths,
// neutralizes active content, and writes one artifact per page.
type Driver struct {
	client    *http.Client
	policy    *webmirror.Policy
	mapper    *webmirror.PathMapper
	converter *htmltomarkdown.Converter
	writer    *fs.Writer

	// UserAgent and Headers identify the client on every request.
	UserAgent string
	Headers   map[string]string

	// AuthMarkers override the default login-page detection substrings.
	AuthMarkers []string

	// Resources, when set, downloads stylesheets and images into the
	// shared pool and rewrites their references.
	Resources *ResourcePool
}

// NewDriver creates an HTML driver. The policy decides which extracted
// links are returned and which outbound links are rewritten to local paths.
func NewDriver(client *http.Client, policy *webmirror.Policy, mapper *webmirror.PathMapper) *Driver {
	return &Driver{
		client:    client,
		policy:    policy,
		mapper:    mapper,
		converter: htmltomarkdown.NewConverter(),
		writer:    fs.NewWriter(),
	}
}

// Fetch retrieves one page and extracts its outbound links.
func (d *Driver) Fetch(ctx context.Context, cleanURL string, depth int) (*webmirror.FetchOutcome, error) {
	body, err := d.get(ctx, cleanURL)
	if err != nil {
		return nil, err
	}

	if marker, hit := d.authTriggered(body); hit {
		return nil, webmirror.Errorf(webmirror.EAUTH, "authentication required for %s (%s)", cleanURL, marker)
	}

	doc, err := gq.Parse(body)
	if err != nil {
		return nil, webmirror.Errorf(webmirror.EPARSE, "cannot parse %s: %v", cleanURL, err)
	}

	var links []string
	for _, link := range gq.ExtractLinks(doc, cleanURL) {
		if d.policy.Admit(link, depth+1) {
			links = append(links, link)
		}
	}

	title, _, _ := gq.MainContent(doc)
	return &webmirror.FetchOutcome{
		Body:  body,
		Links: links,
		Title: title,
	}, nil
}

// Save rewrites the fetched HTML and writes the page artifact to localPath.
func (d *Driver) Save(ctx context.Context, cleanURL string, outcome *webmirror.FetchOutcome, localPath string) error {
	doc, err := gq.Parse(outcome.Body)
	if err != nil {
		return webmirror.Errorf(webmirror.EPARSE, "cannot parse %s: %v", cleanURL, err)
	}

	gq.Neutralize(doc)

	gq.RewriteLinks(doc, cleanURL, func(linkURL string) (string, bool) {
		if !d.policy.Admit(linkURL, 0) {
			return "", false
		}
		rel, err := webmirror.RelativeHref(localPath, d.mapper.LocalPath(linkURL))
		if err != nil {
			return "", false
		}
		return rel, true
	})

	if d.Resources != nil {
		gq.RewriteResources(doc, cleanURL, func(resourceURL string, kind webmirror.ResourceType) (string, bool) {
			poolPath, ok := d.Resources.Download(ctx, resourceURL, kind, cleanURL)
			if !ok {
				return "", false
			}
			rel, err := webmirror.RelativeHref(localPath, poolPath)
			if err != nil {
				return "", false
			}
			return rel, true
		})
	}

	if d.mapper.Format == webmirror.FormatMarkdown {
		return d.saveMarkdown(doc, cleanURL, localPath)
	}

	html, err := gq.Render(doc)
	if err != nil {
		return webmirror.Errorf(webmirror.EINTERNAL, "cannot render %s: %v", cleanURL, err)
	}
	return d.writer.WriteString(localPath, html)
}

func (d *Driver) saveMarkdown(doc *gq.Document, cleanURL, localPath string) error {
	title, contentHTML, err := gq.MainContent(doc)
	if err != nil {
		return webmirror.Errorf(webmirror.EPARSE, "cannot extract content of %s: %v", cleanURL, err)
	}

	md, err := d.converter.Convert(contentHTML)
	if err != nil {
		return err
	}

	return d.writer.WriteString(localPath, htmltomarkdown.PageHeader(title, cleanURL)+md)
}

// get performs the page GET and classifies transport and protocol errors.
func (d *Driver) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", webmirror.Errorf(webmirror.EINVALID, "invalid URL %q: %v", pageURL, err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	for name, value := range d.Headers {
		req.Header.Set(name, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", webmirror.Errorf(webmirror.ETIMEOUT, "timeout fetching %s", pageURL)
		}
		return "", webmirror.Errorf(webmirror.ETRANSPORT, "cannot fetch %s: %v", pageURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", webmirror.Errorf(webmirror.EAUTH, "HTTP %d for %s", resp.StatusCode, pageURL)
	case resp.StatusCode == http.StatusNotFound:
		return "", webmirror.Errorf(webmirror.ENOTFOUND, "HTTP 404 for %s", pageURL)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", webmirror.Errorf(webmirror.EPROTOCOL, "HTTP %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", webmirror.Errorf(webmirror.ETRANSPORT, "cannot read %s: %v", pageURL, err)
	}
	return string(body), nil
}

// authTriggered applies the authentication heuristic to a 2xx body.
func (d *Driver) authTriggered(body string) (string, bool) {
	markers := d.AuthMarkers
	if markers == nil {
		markers = defaultAuthMarkers
	}
	for _, marker := range markers {
		if strings.Contains(body, marker) {
			return marker, true
		}
	}
	if len(body) < authBodyMinBytes {
		return "short body", true
	}
	return "", false
}
