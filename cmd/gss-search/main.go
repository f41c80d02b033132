// Command gss-search caches Google Sheets locally and fuzzy-searches their rows.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/gss-search/internal/cli"
	"github.com/rshade/gss-search/internal/search"
	"github.com/rshade/gss-search/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and returns the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCmd(version.GetVersion()).ExecuteContext(ctx)
	if err != nil && !errors.Is(err, search.ErrSelectionCancelled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps a command error to the process exit status. A cancelled
// selection is a normal exit.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, search.ErrSelectionCancelled):
		return 0
	default:
		return 1
	}
}
