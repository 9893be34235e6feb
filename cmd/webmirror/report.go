package main

import (
	"fmt"

	"github.com/sjseo298/webmirror"
)

// Run executes the report command.
func (c *ReportCmd) Run(deps *Dependencies) error {
	ctx := deps.Ctx

	counts, err := deps.Store.StatusCounts(ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "URL lifecycle")
	printStatusLine(deps, "pending", counts.Pending, counts.Discovered)
	printStatusLine(deps, "downloading", counts.Downloading, counts.Discovered)
	printStatusLine(deps, "completed", counts.Completed, counts.Discovered)
	printStatusLine(deps, "failed", counts.Failed, counts.Discovered)
	fmt.Fprintf(deps.Stdout, "  %-12s %d\n", "total", counts.Discovered)

	docCount, docBytes, err := deps.Store.DocumentTotals(ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "\nDocuments: %d (%s)\n", docCount, formatBytes(docBytes))

	resources, err := deps.Store.ResourceCounts(ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}
	if len(resources) > 0 {
		fmt.Fprintln(deps.Stdout, "\nResources")
		for _, kind := range []webmirror.ResourceType{
			webmirror.ResourceCSS, webmirror.ResourceJS, webmirror.ResourceImage,
			webmirror.ResourceFont, webmirror.ResourceAttachment, webmirror.ResourceOther,
		} {
			if stat, ok := resources[kind]; ok {
				fmt.Fprintf(deps.Stdout, "  %-12s %6d  %s\n", kind, stat.Count, formatBytes(stat.Bytes))
			}
		}
	}

	failures, err := deps.Store.RecentFailures(ctx, c.Failures)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}
	if len(failures) > 0 {
		fmt.Fprintln(deps.Stdout, "\nRecent failures")
		for _, f := range failures {
			fmt.Fprintf(deps.Stdout, "  %s\n    %s\n", f.CleanURL, f.ErrorMessage)
		}
	}

	return nil
}

func printStatusLine(deps *Dependencies, label string, n, total int) {
	pct := 0.0
	if total > 0 {
		pct = float64(n) / float64(total) * 100
	}
	fmt.Fprintf(deps.Stdout, "  %-12s %6d  %5.1f%%\n", label, n, pct)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
