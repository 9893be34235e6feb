package http

import (
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/sjseo298/webmirror"
)

// ParseCookies parses cookie file content in either of two formats: a
// single "name=value; name2=value2" line, or tab-separated records whose
// last two fields are name and value (the Netscape cookie file layout).
// Blank lines and # comments are ignored.
func ParseCookies(content string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "\t") {
			fields := strings.Split(line, "\t")
			if len(fields) < 7 {
				continue
			}
			name := strings.TrimSpace(fields[5])
			value := strings.TrimSpace(fields[6])
			if name != "" {
				cookies = append(cookies, &http.Cookie{Name: name, Value: value})
			}
			continue
		}

		for _, pair := range strings.Split(line, ";") {
			pair = strings.TrimSpace(pair)
			name, value, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(name) == "" {
				continue
			}
			cookies = append(cookies, &http.Cookie{
				Name:  strings.TrimSpace(name),
				Value: strings.TrimSpace(value),
			})
		}
	}
	return cookies
}

// LoadCookieFile reads and parses a cookie file. A missing file is not an
// error; the crawl proceeds without cookies.
func LoadCookieFile(path string) ([]*http.Cookie, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, webmirror.Errorf(webmirror.EINVALID, "cannot read cookie file %s: %v", path, err)
	}
	return ParseCookies(string(data)), nil
}

// SetCookies installs cookies into the client's jar for the given site URL.
func SetCookies(client *http.Client, siteURL string, cookies []*http.Cookie) error {
	if client.Jar == nil || len(cookies) == 0 {
		return nil
	}
	u, err := url.Parse(siteURL)
	if err != nil {
		return webmirror.Errorf(webmirror.EINVALID, "invalid site URL %q: %v", siteURL, err)
	}
	client.Jar.SetCookies(u, cookies)
	return nil
}
