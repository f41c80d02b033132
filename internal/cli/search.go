package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/gss-search/internal/search"
	"github.com/rshade/gss-search/internal/table"
	"github.com/rshade/gss-search/internal/tui"
)

// searchFlags holds the flags of the search command.
type searchFlags struct {
	url   string
	query string
	plain bool
	copy  bool
}

// newSearchCmd creates the search command.
func newSearchCmd(s *session) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search [url]",
		Short: "Fuzzy-search the rows of a sheet",
		Long: `Opens an interactive fuzzy finder over the rows of a sheet and prints the
chosen row as "column: value" lines.

When the sheet is cached the cached rows are shown immediately and a fresh
copy is fetched in the background; a failed refresh is reported as a warning
after the selection. When nothing is cached the sheet is fetched first.

With --plain, or when not attached to a terminal, the rows matching --query
are printed best match first instead.`,
		Example: `  gss-search search "https://docs.google.com/spreadsheets/d/<id>/edit#gid=0"
  gss-search search -u "https://docs.google.com/spreadsheets/d/<id>/edit" --query smith --copy
  gss-search search --plain --query "acme inc" "https://docs.google.com/spreadsheets/d/<id>/edit"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, s, flags, args)
		},
	}

	addURLFlag(cmd, &flags.url)
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "initial filter text")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "print ranked rows instead of opening the interactive finder")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "copy the selected row to the clipboard")

	return cmd
}

func runSearch(cmd *cobra.Command, s *session, flags searchFlags, args []string) error {
	loc, err := resolveLocator(flags.url, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	orch, err := s.orchestrator(cmd)
	if err != nil {
		return err
	}

	res, err := orch.Obtain(ctx, loc)
	if err != nil {
		return err
	}
	defer s.joinRefresh(cmd, res)

	tbl := res.Table
	logger.Info().Ctx(ctx).
		Str("locator", loc.String()).
		Stringer("cache_state", res.State).
		Int("body_rows", len(tbl.Body)).
		Msg("table ready for search")

	opts := s.cfg.Display.RenderOptions()
	lines := tbl.Lines(opts)
	if len(lines) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "The sheet has no data rows.")
		return nil
	}

	interactive := s.deps.Interactive()
	if flags.plain || !interactive {
		return printRanked(cmd.OutOrStdout(), flags.query, lines)
	}

	header := table.RenderRow(tbl.Header, tbl.Columns, opts)
	idx, err := s.selectLine(cmd, header, flags.query, lines)
	if errors.Is(err, search.ErrSelectionCancelled) {
		logger.Info().Ctx(ctx).Msg("selection cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	fields := table.Fields(tbl.Body[idx], tbl.Columns)
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderRecord(fields, s.deps.StyledOutput()))

	if flags.copy {
		if copyErr := s.deps.CopyToClipboard(tui.RenderRecord(fields, false)); copyErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not copy to clipboard: %v\n", copyErr)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
		}
	}
	return nil
}

// printRanked writes the lines matching query, best first.
func printRanked(w io.Writer, query string, lines []string) error {
	for _, i := range search.Rank(query, lines) {
		if _, err := fmt.Fprintln(w, lines[i]); err != nil {
			return err
		}
	}
	return nil
}

// selectLine runs the interactive selector. Log lines bound for the terminal,
// such as those of the background refresh, are held until it closes.
func (s *session) selectLine(cmd *cobra.Command, header, query string, lines []string) (int, error) {
	s.logResult.Hold()
	defer func() {
		if err := s.logResult.Release(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not write held log output: %v\n", err)
		}
	}()
	return s.deps.NewSelector(header, query).Select(cmd.Context(), lines)
}
