package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newFetchCmd creates the fetch command, which populates the cache.
func newFetchCmd(s *session) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:     "fetch [url]",
		Aliases: []string{"save"},
		Short:   "Fetch a sheet and store it in the local cache",
		Long: `Downloads the sheet identified by the URL and replaces its cache entry.

The sheet is selected by the #gid= fragment of the URL; without one the first
sheet (gid 0) is used.`,
		Example: `  gss-search fetch "https://docs.google.com/spreadsheets/d/<id>/edit#gid=42"
  gss-search save -u "https://docs.google.com/spreadsheets/d/<id>/edit"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, s, url, args)
		},
	}
	addURLFlag(cmd, &url)

	return cmd
}

func runFetch(cmd *cobra.Command, s *session, url string, args []string) error {
	loc, err := resolveLocator(url, args)
	if err != nil {
		return err
	}

	orch, err := s.orchestrator(cmd)
	if err != nil {
		return err
	}

	tbl, err := orch.Fetch(cmd.Context(), loc)
	if err != nil {
		return err
	}

	rows, cols := len(tbl.Body), len(tbl.Columns)
	fmt.Fprintf(cmd.ErrOrStderr(), "Fetched %s %s and %s %s into %s\n",
		formatCount(rows), plural(rows, "row"),
		formatCount(cols), plural(cols, "column"),
		s.store.PathFor(loc))
	return nil
}
