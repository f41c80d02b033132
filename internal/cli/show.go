package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/gss-search/internal/table"
	"github.com/rshade/gss-search/internal/tui"
)

// newShowCmd creates the show command, which prints a cached sheet.
func newShowCmd(s *session) *cobra.Command {
	var (
		url      string
		noHeader bool
	)

	cmd := &cobra.Command{
		Use:   "show [url]",
		Short: "Print a cached sheet",
		Long:  "Prints the cached rows of a sheet, one aligned line per row. The network is never used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := resolveLocator(url, args)
			if err != nil {
				return err
			}

			tbl, err := s.loadCached(loc)
			if err != nil {
				return err
			}

			opts := s.cfg.Display.RenderOptions()
			out := cmd.OutOrStdout()
			if !noHeader && len(tbl.Header) > 0 {
				header := table.RenderRow(tbl.Header, tbl.Columns, opts)
				if s.deps.StyledOutput() {
					header = tui.HeaderStyle.Render(header)
				}
				fmt.Fprintln(out, header)
			}
			for _, line := range tbl.Lines(opts) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	addURLFlag(cmd, &url)
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the header row")

	return cmd
}
