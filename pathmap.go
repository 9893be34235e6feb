package webmirror

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Format is the configured artifact output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatHTML {
		return "html"
	}
	return "md"
}

// Valid returns true for a known output format.
func (f Format) Valid() bool {
	return f == FormatMarkdown || f == FormatHTML
}

// Page-id extraction patterns, tried in order. The first capture wins.
var pageIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/pages/(\d+)`),
	regexp.MustCompile(`pageId=(\d+)`),
	regexp.MustCompile(`/content/(\d+)`),
	regexp.MustCompile(`/(\d{6,})`),
}

// Known path prefixes stripped in the generic site layout.
var knownPathPrefixes = []string{"wiki/", "docs/", "help/"}

// Reserved filesystem characters replaced with underscores in path segments.
var reservedPathChars = regexp.MustCompile(`[<>:"|?*]`)

// PathMapper maps URLs to stable local output paths. It is pure: the same
// URL always maps to the same path, independent of any crawl state.
type PathMapper struct {
	// OutputDir is the root of the local mirror.
	OutputDir string

	// Space is the wiki space directory segment.
	Space string

	// Format selects the artifact extension (md or html).
	Format Format

	// Wiki selects the spaces/<space>/pages/<id>/ layout; when false the
	// generic site layout mirrors the URL path structure.
	Wiki bool
}

// PageID derives a stable page identifier from a URL. It tries the numeric
// id patterns in order, then falls back to the last non-empty path segment,
// and finally to a hash-derived identifier so that every URL maps somewhere.
func (m *PathMapper) PageID(rawURL string) string {
	for _, re := range pageIDPatterns {
		if match := re.FindStringSubmatch(rawURL); match != nil {
			return match[1]
		}
	}

	if u, err := url.Parse(rawURL); err == nil {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if segments[i] != "" {
				return sanitizeSegment(segments[i])
			}
		}
	}

	sum := md5.Sum([]byte(rawURL))
	return "page_" + fmt.Sprintf("%x", sum)[:10]
}

// LocalPath returns the local artifact path for a page URL.
func (m *PathMapper) LocalPath(rawURL string) string {
	if m.Wiki {
		return m.pagePath(rawURL)
	}
	return m.sitePath(rawURL)
}

// PageDir returns the directory holding all artifacts for a page.
func (m *PathMapper) PageDir(rawURL string) string {
	return filepath.Dir(m.LocalPath(rawURL))
}

// pagePath is the wiki layout: <out>/spaces/<space>/pages/<id>/index.<ext>.
func (m *PathMapper) pagePath(rawURL string) string {
	return filepath.Join(m.OutputDir, "spaces", m.Space, "pages", m.PageID(rawURL), "index."+m.Format.Ext())
}

// sitePath is the generic layout: the URL path mirrored under the output
// directory, with known prefixes stripped, index.<ext> appended for
// directory-like paths, and reserved characters replaced.
func (m *PathMapper) sitePath(rawURL string) string {
	var urlPath string
	if u, err := url.Parse(rawURL); err == nil {
		urlPath = u.Path
	}

	p := strings.TrimPrefix(urlPath, "/")
	for _, prefix := range knownPathPrefixes {
		if strings.HasPrefix(p, prefix) {
			p = strings.TrimPrefix(p, prefix)
			break
		}
	}

	dirLike := p == "" || strings.HasSuffix(p, "/") || !strings.Contains(path.Base(p), ".")
	if dirLike {
		p = path.Join(p, "index."+m.Format.Ext())
	} else {
		ext := path.Ext(p)
		p = strings.TrimSuffix(p, ext) + "." + m.Format.Ext()
	}

	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = sanitizeSegment(segment)
	}

	return filepath.Join(append([]string{m.OutputDir}, segments...)...)
}

// sanitizeSegment replaces reserved filesystem characters with underscores.
func sanitizeSegment(segment string) string {
	return reservedPathChars.ReplaceAllString(segment, "_")
}

// RelativeHref computes the relative href from one local artifact file to
// another, in slash form suitable for HTML links.
func RelativeHref(fromFile, toFile string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(fromFile), toFile)
	if err != nil {
		return "", Errorf(EINVALID, "cannot relativize %q from %q: %v", toFile, fromFile, err)
	}
	return filepath.ToSlash(rel), nil
}
