package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/gss-search/internal/export"
)

// newExportCmd creates the export command, which writes a cached sheet to xlsx.
func newExportCmd(s *session) *cobra.Command {
	var (
		url       string
		output    string
		sheetName string
	)

	cmd := &cobra.Command{
		Use:   "export [url]",
		Short: "Export a cached sheet to an .xlsx file",
		Long: `Writes the cached header and rows of a sheet to an Excel workbook.
Only the local cache is read; run "gss-search fetch" first to update it.`,
		Example: `  gss-search export "https://docs.google.com/spreadsheets/d/<id>/edit#gid=0" -o contacts.xlsx`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := resolveLocator(url, args)
			if err != nil {
				return err
			}

			tbl, err := s.loadCached(loc)
			if err != nil {
				return err
			}

			if err = export.WriteXLSX(tbl, output, sheetName); err != nil {
				return err
			}

			rows := len(tbl.Body)
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s %s to %s\n", formatCount(rows), plural(rows, "row"), output)
			return nil
		},
	}

	addURLFlag(cmd, &url)
	cmd.Flags().StringVarP(&output, "output", "o", "", "path of the .xlsx file to write")
	cmd.Flags().StringVar(&sheetName, "sheet-name", export.DefaultSheetName, "worksheet name in the workbook")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
