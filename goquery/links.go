// Package goquery provides HTML parsing for the crawler: link extraction,
// link and resource rewriting, JS neutralization, and main-content
// selection.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sjseo298/webmirror"
)

// Document aliases the underlying goquery document so callers outside this
// package do not need a second goquery import.
type Document = goquery.Document

// Parse builds a document from an HTML string.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webmirror.Errorf(webmirror.EPARSE, "cannot parse HTML: %v", err)
	}
	return doc, nil
}

// Render serializes a document back to HTML.
func Render(doc *goquery.Document) (string, error) {
	html, err := doc.Html()
	if err != nil {
		return "", webmirror.Errorf(webmirror.EPARSE, "cannot render HTML: %v", err)
	}
	return html, nil
}

// ExtractLinks returns the absolute clean URL of every <a href> in the
// document, resolved against baseURL and deduplicated in document order.
// mailto:, javascript:, tel:, and bare-fragment links are skipped.
func ExtractLinks(doc *goquery.Document, baseURL string) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || skipScheme(href) {
			return
		}

		clean, err := webmirror.ResolveURL(baseURL, href)
		if err != nil {
			return
		}
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		links = append(links, clean)
	})

	return links
}

func skipScheme(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:")
}
