package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/gss-search/internal/locator"
)

// errMissingURL is returned when neither --url nor a positional URL is given.
var errMissingURL = errors.New("a spreadsheet URL is required (positional argument or --url)")

// errAmbiguousURL is returned when both --url and a positional URL are given.
var errAmbiguousURL = errors.New("give the spreadsheet URL either as an argument or with --url, not both")

// addURLFlag registers --url/-u on cmd.
func addURLFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "url", "u", "", "spreadsheet URL (alternative to the positional argument)")
}

// resolveLocator parses the spreadsheet URL from the flag or the first argument.
func resolveLocator(flagURL string, args []string) (locator.Locator, error) {
	raw := flagURL
	switch {
	case flagURL != "" && len(args) > 0:
		return locator.Locator{}, errAmbiguousURL
	case flagURL == "" && len(args) == 0:
		return locator.Locator{}, errMissingURL
	case flagURL == "":
		raw = args[0]
	}
	return locator.Parse(raw)
}
