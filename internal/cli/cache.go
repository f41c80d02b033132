package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/gss-search/internal/cache"
)

// errConfirmationRequired is returned by destructive commands run without a
// terminal and without --yes.
var errConfirmationRequired = errors.New("refusing to delete without confirmation, pass --yes")

// newCacheCmd creates the cache command group.
func newCacheCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Inspect and clear the local sheet cache"}
	cmd.AddCommand(newCacheListCmd(s), newCachePathCmd(s), newCacheClearCmd(s))
	return cmd
}

func newCacheListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := s.store.List()
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cached sheets.")
				return nil
			}

			const tabPadding = 2
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			fmt.Fprintln(w, "Spreadsheet\tSheet\tSize\tAge")
			fmt.Fprintln(w, "-----------\t-----\t----\t---")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
					e.Locator.SpreadsheetID, e.Locator.SheetID, formatBytes(e.Size), cache.FormatDuration(e.Age()))
			}
			return w.Flush()
		},
	}
}

func newCachePathCmd(s *session) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "path [url]",
		Short: "Print the cache file path for a sheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := resolveLocator(url, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.store.PathFor(loc))
			return nil
		},
	}
	addURLFlag(cmd, &url)

	return cmd
}

func newCacheClearCmd(s *session) *cobra.Command {
	var (
		url string
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "clear [url]",
		Short: "Delete cached sheets",
		Long:  "Deletes the cache entry for one sheet, or every cached sheet when no URL is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			single := url != "" || len(args) > 0

			question := fmt.Sprintf("Delete every cached sheet under %s?", s.store.DataDir())
			remove := s.store.Clear
			if single {
				loc, err := resolveLocator(url, args)
				if err != nil {
					return err
				}
				question = fmt.Sprintf("Delete the cached copy of %s?", loc)
				remove = func() error { return s.store.Delete(loc) }
			}

			if !yes {
				interactive := s.deps.Interactive()
				if !interactive {
					return errConfirmationRequired
				}
				if !Confirm(cmd.ErrOrStderr(), cmd.InOrStdin(), interactive, question).Accepted {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
					return nil
				}
			}

			if err := remove(); err != nil {
				return err
			}
			logger.Info().Ctx(cmd.Context()).Bool("single", single).Msg("cache cleared")
			fmt.Fprintln(cmd.ErrOrStderr(), "Cache cleared.")
			return nil
		},
	}
	addURLFlag(cmd, &url)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
