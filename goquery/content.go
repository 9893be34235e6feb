package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors is the cascade used to locate the main content region;
// the first selector with a match wins, with <body> as the final fallback.
var contentSelectors = []string{
	"#main-content",
	".wiki-content",
	"main",
	"article",
	".content",
}

// chromeSelectors are navigation and toolbar elements removed from the
// retained content region before conversion.
var chromeSelectors = []string{
	"nav",
	"header",
	"footer",
	".navigation",
	".breadcrumbs",
	".toolbar",
	".aui-toolbar2",
	".page-metadata",
}

// MainContent returns the page title and the HTML of the main content
// region, with navigation and toolbar sub-elements removed.
func MainContent(doc *goquery.Document) (title, contentHTML string, err error) {
	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	var region *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			region = sel
			break
		}
	}
	if region == nil {
		region = doc.Find("body").First()
	}
	if region.Length() == 0 {
		html, err := Render(doc)
		return title, html, err
	}

	for _, selector := range chromeSelectors {
		region.Find(selector).Remove()
	}

	html, err := goquery.OuterHtml(region)
	if err != nil {
		return title, "", err
	}
	return title, html, nil
}
