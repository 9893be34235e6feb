// Package http provides the HTML site driver: it fetches pages with a
// cookie-aware HTTP client, extracts and rewrites links, neutralizes active
// content, and writes either HTML or Markdown artifacts.
package http

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/sjseo298/webmirror"
	"golang.org/x/net/publicsuffix"
)

// NewClient creates an HTTP client with a public-suffix-aware cookie jar,
// a connect timeout enforced at dial time, and an overall request timeout.
func NewClient(connectTimeout, readTimeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	return &http.Client{
		Jar:     jar,
		Timeout: readTimeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: connectTimeout,
		},
	}, nil
}

// NewPageClient creates the client used for page fetches.
func NewPageClient() (*http.Client, error) {
	return NewClient(webmirror.DefaultConnectTimeout, webmirror.DefaultReadTimeout)
}

// NewResourceClient creates the client used for auxiliary resource fetches.
func NewResourceClient() (*http.Client, error) {
	return NewClient(webmirror.DefaultResourceConnectTimeout, webmirror.DefaultResourceReadTimeout)
}
