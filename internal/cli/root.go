package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/gss-search/internal/cache"
	"github.com/rshade/gss-search/internal/config"
	"github.com/rshade/gss-search/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// annotationSkipConfig marks commands that must run even when config.yaml is invalid.
const annotationSkipConfig = "gss-search/skip-config"

// session holds per-invocation state shared by all subcommands.
type session struct {
	deps Deps

	home  string
	debug bool

	cfg       *config.Config
	store     *cache.Store
	logResult *logging.LogPathResult
}

// NewRootCmd creates the root Cobra command for the gss-search CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithDeps(ver, DefaultDeps())
}

// NewRootCmdWithDeps creates the root command with explicit collaborators for testability.
func NewRootCmdWithDeps(ver string, deps Deps) *cobra.Command {
	s := &session{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "gss-search",
		Short: "Fuzzy-search Google Sheets from the terminal",
		Long: `gss-search caches a Google Sheets tab locally and lets you fuzzy-search its rows.

The first search of a sheet fetches it; later searches open instantly on the
cached copy while a fresh copy is fetched in the background for next time.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, s.logResult)
		},
	}

	cmd.PersistentFlags().BoolVar(&s.debug, "debug", false, "enable debug logging to stderr")
	cmd.PersistentFlags().StringVar(&s.home, "home", "",
		"base directory for config, cache and tokens (default $GSS_SEARCH_HOME or ~/.gss-search)")

	cmd.AddCommand(
		newFetchCmd(s),
		newSearchCmd(s),
		newShowCmd(s),
		newExportCmd(s),
		newCacheCmd(s),
		newConfigCmd(s),
	)
	return cmd
}

// init resolves the base directory, loads configuration, opens the cache
// store and configures logging.
func (s *session) init(cmd *cobra.Command) error {
	baseDir, err := config.ResolveBaseDir(s.home)
	if err != nil {
		return err
	}

	if cmd.Annotations[annotationSkipConfig] != "" {
		s.cfg = config.New(baseDir)
	} else {
		s.cfg, err = config.Load(baseDir)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	s.store, err = cache.NewStore(baseDir)
	if err != nil {
		return err
	}

	result := setupLogging(cmd, s.cfg, s.debug)
	s.logResult = &result
	return nil
}

const rootCmdExample = `  # Cache a sheet
  gss-search fetch "https://docs.google.com/spreadsheets/d/<id>/edit#gid=0"

  # Search it interactively (fetches first if not cached)
  gss-search search "https://docs.google.com/spreadsheets/d/<id>/edit#gid=0"

  # Print matching rows without the interactive UI
  gss-search search --plain --query "smith" -u "https://docs.google.com/spreadsheets/d/<id>/edit"

  # Show what is cached
  gss-search cache list`

// newConfigCmd creates the config command group.
func newConfigCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(newConfigInitCmd(s), newConfigShowCmd(s))
	return cmd
}
