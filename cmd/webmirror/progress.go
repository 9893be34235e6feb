package main

import (
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/sjseo298/webmirror"
)

// progressBar adapts the engine's progress events to a live spinner with
// running counters.
type progressBar struct {
	bar *progressbar.ProgressBar
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("crawling"),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetWidth(40),
		),
	}
}

func (p *progressBar) observe(event webmirror.ProgressEvent) {
	switch event.Type {
	case webmirror.ProgressDownloaded:
		_ = p.bar.Add(1)
		p.describe(event)
	case webmirror.ProgressFailed, webmirror.ProgressIndexExpanded, webmirror.ProgressResource:
		p.describe(event)
	}
}

func (p *progressBar) describe(event webmirror.ProgressEvent) {
	url := event.URL
	if len(url) > 60 {
		url = "…" + url[len(url)-59:]
	}
	p.bar.Describe(url)
}

func (p *progressBar) finish() {
	_ = p.bar.Finish()
}
