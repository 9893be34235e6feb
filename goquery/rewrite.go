package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sjseo298/webmirror"
)

// RewriteLinks replaces each anchor href with the value returned by
// resolve, called with the link's absolute clean URL. When resolve reports
// no mapping the href is replaced with the absolute URL so saved pages
// never carry dangling relative links.
func RewriteLinks(doc *goquery.Document, baseURL string, resolve func(cleanURL string) (string, bool)) {
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
		if local, ok := resolve(clean); ok {
			sel.SetAttr("href", local)
		} else {
			sel.SetAttr("href", clean)
		}
	})
}

// resourceSelectors locate auxiliary assets and the attribute carrying
// their URL.
var resourceSelectors = []struct {
	selector string
	attr     string
	kind     webmirror.ResourceType
}{
	{selector: `link[rel="stylesheet"]`, attr: "href", kind: webmirror.ResourceCSS},
	{selector: "img[src]", attr: "src", kind: webmirror.ResourceImage},
}

// RewriteResources walks stylesheet and image references, calls download
// with each absolute URL and its type, and rewrites the reference to the
// returned local href. References download declines are left untouched.
func RewriteResources(doc *goquery.Document, baseURL string, download func(resourceURL string, kind webmirror.ResourceType) (string, bool)) {
	for _, rs := range resourceSelectors {
		doc.Find(rs.selector).Each(func(_ int, sel *goquery.Selection) {
			ref, ok := sel.Attr(rs.attr)
			if !ok || strings.TrimSpace(ref) == "" || skipScheme(ref) {
				return
			}
			abs, err := webmirror.ResolveURL(baseURL, ref)
			if err != nil {
				return
			}
			if local, ok := download(abs, rs.kind); ok {
				sel.SetAttr(rs.attr, local)
			}
		})
	}
}

// Neutralize strips active content from a document: script and noscript
// elements, meta refresh redirects, and inline on* event attributes.
func Neutralize(doc *goquery.Document) {
	doc.Find("script, noscript").Remove()

	doc.Find("meta[http-equiv]").Each(func(_ int, sel *goquery.Selection) {
		if equiv, _ := sel.Attr("http-equiv"); strings.EqualFold(equiv, "refresh") {
			sel.Remove()
		}
	})

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if !strings.HasPrefix(strings.ToLower(attr.Key), "on") {
					kept = append(kept, attr)
				}
			}
			node.Attr = kept
		}
	})
}
