package confluence

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/sjseo298/webmirror"
)

// optionalQuery matches a query string glued to a rewritten URL variant.
const optionalQuery = `(?:\?[^"'\s<>)]*)?`

// RewriteAttachmentURLs replaces every reference to a page's attachments
// with the relative local path attachments/<local_filename>. Five URL
// variants are covered: the absolute download URL, the /wiki-prefixed
// path, the path without /wiki, the path without a leading slash, and
// thumbnail URLs carrying the bare filename.
func RewriteAttachmentURLs(html string, attachments []*webmirror.Attachment) string {
	for _, a := range attachments {
		if a.LocalFilename == "" || a.DownloadURL == "" {
			continue
		}
		target := "attachments/" + a.LocalFilename

		u, err := url.Parse(a.DownloadURL)
		if err != nil || u.Path == "" {
			continue
		}

		withoutWiki := strings.TrimPrefix(u.Path, "/wiki")
		withWiki := "/wiki" + withoutWiki

		// Longest variants first so shorter ones cannot clip them: the
		// slashless wiki form must go before the /wiki-less path, which is
		// a substring of it.
		variants := []string{
			a.DownloadURL,
			withWiki,
			strings.TrimPrefix(withWiki, "/"),
			withoutWiki,
			strings.TrimPrefix(withoutWiki, "/"),
		}
		seen := make(map[string]struct{}, len(variants))
		for _, variant := range variants {
			if variant == "" {
				continue
			}
			if _, dup := seen[variant]; dup {
				continue
			}
			seen[variant] = struct{}{}
			re := regexp.MustCompile(regexp.QuoteMeta(variant) + optionalQuery)
			html = re.ReplaceAllString(html, target)
		}

		// Thumbnails carry the bare filename under a different path; the
		// absolute form must be matched whole or the host survives the
		// replacement.
		if filename := path.Base(u.Path); filename != "" && filename != "/" {
			thumb := regexp.MustCompile(`(?:https?://[^"'\s]+)?(?:/wiki)?/download/thumbnails/\d+/` + regexp.QuoteMeta(filename) + optionalQuery)
			html = thumb.ReplaceAllString(html, target)
		}
	}
	return html
}
