package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/sjseo298/webmirror"
	"github.com/sjseo298/webmirror/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *webmirror.Config
	Store  *sqlite.Store
	Logger *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"Path to the configuration file" default:"config.yml"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Crawl  CrawlCmd  `cmd:"" help:"Start or resume the crawl"`
	Reset  ResetCmd  `cmd:"" help:"Reset all crawl progress, keeping the schema"`
	Export ExportCmd `cmd:"" help:"Export URLs in a given lifecycle state"`
	Report ReportCmd `cmd:"" help:"Print a summary report of the crawl state"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Quiet bool `short:"q" help:"Suppress the progress display"`
}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct {
	Force bool `help:"Confirm the reset"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Status string `arg:"" enum:"pending,downloading,completed,failed" help:"Lifecycle state to export"`
	Output string `short:"o" help:"Write to a file instead of stdout"`
}

// ReportCmd is the "report" subcommand.
type ReportCmd struct {
	Failures int `default:"10" help:"Number of recent failures to show"`
}
