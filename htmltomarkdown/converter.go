// Package htmltomarkdown converts page HTML into the Markdown artifacts
// written by the site drivers.
package htmltomarkdown

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/sjseo298/webmirror"
)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter with table support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", webmirror.Errorf(webmirror.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", webmirror.Errorf(webmirror.EPARSE, "markdown conversion failed: %v", err)
	}

	return result, nil
}

// PageHeader is the short metadata header prepended to generic page
// Markdown artifacts.
func PageHeader(title, sourceURL string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	fmt.Fprintf(&b, "> Source: %s\n\n", sourceURL)
	return b.String()
}

// WikiHeader is the metadata header prepended to wiki page Markdown
// artifacts.
func WikiHeader(title, space, pageID, updated string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	fmt.Fprintf(&b, "> Space: %s | Page ID: %s", space, pageID)
	if updated != "" {
		fmt.Fprintf(&b, " | Updated: %s", updated)
	}
	b.WriteString("\n\n")
	return b.String()
}
