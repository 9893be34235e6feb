// Package confluence provides the wiki API site driver: it resolves pages
// through the Confluence REST API, downloads attachments, rewrites
// attachment references, and writes the per-page artifact set.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sjseo298/webmirror"
)

// contentExpand is the expansion set requested for every page fetch.
const contentExpand = "history.lastUpdated,version,body.view,body.storage,space,ancestors,children.page,metadata.labels"

// Pagination sizes mandated by the API contracts.
const (
	searchPageSize     = 100
	attachmentPageSize = 200
)

// Client is an authenticated Confluence REST API client.
type Client struct {
	httpClient *http.Client
	email      string
	token      string

	apiBase  string // https://host/wiki/rest/api
	wikiBase string // https://host/wiki
	siteBase string // https://host
}

// NewClient creates a client from validated credentials.
func NewClient(httpClient *http.Client, creds *webmirror.Credentials) (*Client, error) {
	if !creds.Valid() {
		return nil, webmirror.Errorf(webmirror.EAUTH, "wiki API credentials are missing or incomplete")
	}
	apiBase := creds.APIBase()
	wikiBase := strings.TrimSuffix(apiBase, "/rest/api")
	return &Client{
		httpClient: httpClient,
		email:      creds.Email,
		token:      creds.Token,
		apiBase:    apiBase,
		wikiBase:   wikiBase,
		siteBase:   strings.TrimSuffix(wikiBase, "/wiki"),
	}, nil
}

// SiteBase returns the scheme://host root of the wiki.
func (c *Client) SiteBase() string { return c.siteBase }

// ResolveLink absolutizes a webui or body href against the wiki.
func (c *Client) ResolveLink(href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/wiki/"):
		return c.siteBase + href
	case strings.HasPrefix(href, "/"):
		return c.wikiBase + href
	default:
		return c.wikiBase + "/" + href
	}
}

// SearchSpacePages runs a CQL space search and returns the webui URL of
// every page in the space, following start-offset pagination.
func (c *Client) SearchSpacePages(ctx context.Context, spaceKey string) ([]string, error) {
	var pages []string
	for start := 0; ; start += searchPageSize {
		cql := fmt.Sprintf(`type=page AND space="%s"`, spaceKey)
		endpoint := fmt.Sprintf("%s/content/search?cql=%s&limit=%d&start=%d",
			c.apiBase, url.QueryEscape(cql), searchPageSize, start)

		var page searchResponse
		if _, err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, err
		}
		for _, result := range page.Results {
			if result.Links.WebUI != "" {
				pages = append(pages, c.ResolveLink(result.Links.WebUI))
			}
		}
		if len(page.Results) < searchPageSize {
			return pages, nil
		}
	}
}

// SearchPageByTitle resolves a page id by CQL title lookup. Used as the
// last-resort id extraction when the URL carries no numeric id.
func (c *Client) SearchPageByTitle(ctx context.Context, spaceKey, title string) (string, error) {
	cql := fmt.Sprintf(`type=page AND title="%s"`, title)
	if spaceKey != "" {
		cql += fmt.Sprintf(` AND space="%s"`, spaceKey)
	}
	endpoint := fmt.Sprintf("%s/content/search?cql=%s&limit=1", c.apiBase, url.QueryEscape(cql))

	var page searchResponse
	if _, err := c.getJSON(ctx, endpoint, &page); err != nil {
		return "", err
	}
	if len(page.Results) == 0 {
		return "", webmirror.Errorf(webmirror.ENOTFOUND, "no page titled %q in space %q", title, spaceKey)
	}
	return page.Results[0].ID, nil
}

// ContentURL is the fully expanded request URL for a page id.
func (c *Client) ContentURL(id string) string {
	return fmt.Sprintf("%s/content/%s?expand=%s", c.apiBase, id, url.QueryEscape(contentExpand))
}

// GetContent fetches one page with the full expansion set and returns both
// the decoded content and the verbatim payload.
func (c *Client) GetContent(ctx context.Context, id string) (*Content, []byte, error) {
	endpoint := c.ContentURL(id)

	var content Content
	raw, err := c.getJSON(ctx, endpoint, &content)
	if err != nil {
		return nil, nil, err
	}
	return &content, raw, nil
}

// Attachments lists every attachment of a page, following _links.next
// pagination.
func (c *Client) Attachments(ctx context.Context, id string) ([]attachmentResult, error) {
	endpoint := fmt.Sprintf("%s/content/%s/child/attachment?limit=%d&expand=version,metadata,extensions",
		c.apiBase, id, attachmentPageSize)

	var all []attachmentResult
	for endpoint != "" {
		var page attachmentResponse
		if _, err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Results...)

		if page.Links.Next == "" {
			break
		}
		endpoint = c.ResolveLink(page.Links.Next)
	}
	return all, nil
}

// Download streams an attachment binary, following redirects to the CDN.
// A 404 returns ENOTFOUND so callers can tolerate deleted attachments.
func (c *Client) Download(ctx context.Context, downloadURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ResolveLink(downloadURL), nil)
	if err != nil {
		return nil, webmirror.Errorf(webmirror.EINVALID, "invalid download URL %q: %v", downloadURL, err)
	}
	req.SetBasicAuth(c.email, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, webmirror.Errorf(webmirror.ETRANSPORT, "cannot download %s: %v", downloadURL, err)
	}
	if err := classifyStatus(resp.StatusCode, downloadURL); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// getJSON performs an authenticated GET and decodes the JSON response,
// returning the raw payload alongside.
func (c *Client) getJSON(ctx context.Context, endpoint string, v any) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, webmirror.Errorf(webmirror.EINVALID, "invalid API URL %q: %v", endpoint, err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, webmirror.Errorf(webmirror.ETRANSPORT, "API request failed: %v", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, endpoint); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, webmirror.Errorf(webmirror.ETRANSPORT, "cannot read API response: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, webmirror.Errorf(webmirror.EPARSE, "cannot decode API response: %v", err)
	}
	return raw, nil
}

func classifyStatus(status int, endpoint string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return webmirror.Errorf(webmirror.EAUTH, "HTTP %d from API: check credentials", status)
	case status == http.StatusNotFound:
		return webmirror.Errorf(webmirror.ENOTFOUND, "HTTP 404 for %s", endpoint)
	case status < 200 || status > 299:
		return webmirror.Errorf(webmirror.EPROTOCOL, "HTTP %d for %s", status, endpoint)
	}
	return nil
}
