package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rshade/gss-search/internal/config"
	"github.com/rshade/gss-search/internal/logging"
)

// setupLogging builds the logger from configuration and the --debug flag,
// tags it with a fresh trace id and attaches it to the command context.
func setupLogging(cmd *cobra.Command, cfg *config.Config, debug bool) logging.LogPathResult {
	loggingCfg := cfg.ToLoggingConfig(debug)
	loggingCfg.Stderr = cmd.ErrOrStderr()
	result := logging.NewLoggerWithPath(loggingCfg)
	if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)

	base := result.Logger.With().Str("trace_id", traceID).Logger()
	logger = logging.ComponentLogger(base, "cli")
	ctx = base.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Info().Ctx(ctx).
		Str("command", cmd.CommandPath()).
		Str("base_dir", cfg.BaseDir()).
		Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(cmd *cobra.Command, logResult *logging.LogPathResult) error {
	logger.Debug().Ctx(cmd.Context()).Str("command", cmd.CommandPath()).Msg("command finished")
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
