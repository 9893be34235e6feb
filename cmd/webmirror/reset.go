package main

import (
	"fmt"

	"github.com/sjseo298/webmirror"
)

// Run executes the reset command.
func (c *ResetCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintln(deps.Stdout, "This deletes all crawl progress. Re-run with --force to confirm.")
		return nil
	}

	if err := deps.Store.ResetProgress(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Crawl progress reset.")
	return nil
}
