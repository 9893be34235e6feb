package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sjseo298/webmirror"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	urls, err := deps.Store.URLsByStatus(deps.Ctx, webmirror.URLStatus(c.Status))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}

	out := io.Writer(deps.Stdout)
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: cannot create %s: %v\n", c.Output, err)
			return err
		}
		defer f.Close()
		out = f
	}

	for _, u := range urls {
		fmt.Fprintln(out, u)
	}

	if c.Output != "" {
		fmt.Fprintf(deps.Stdout, "Exported %d %s URLs to %s\n", len(urls), c.Status, c.Output)
	}
	return nil
}
