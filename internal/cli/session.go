package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/gss-search/internal/cache"
	"github.com/rshade/gss-search/internal/locator"
	"github.com/rshade/gss-search/internal/refresh"
	"github.com/rshade/gss-search/internal/sheets"
	"github.com/rshade/gss-search/internal/table"
)

// orchestrator authenticates and returns a refresh orchestrator that fetches
// through the remote service.
func (s *session) orchestrator(cmd *cobra.Command) (*refresh.Orchestrator, error) {
	svc, err := s.deps.NewService(cmd.Context(), s.cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, loc locator.Locator) ([][]any, error) {
		return sheets.FetchValues(ctx, svc, loc)
	}
	return refresh.New(s.store, fetch), nil
}

// loadCached reads loc from the cache without touching the network.
func (s *session) loadCached(loc locator.Locator) (*table.Table, error) {
	tbl, err := s.store.Load(s.store.PathFor(loc))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("no cached data for %s, run \"gss-search fetch\" first: %w", loc, err)
	}
	return tbl, err
}

// joinRefresh waits for a background refresh and reports its failure as a
// warning; the stale table has already been used.
func (s *session) joinRefresh(cmd *cobra.Command, res *refresh.Result) {
	if res == nil {
		return
	}
	if err := res.Refresh.Wait(); err != nil {
		logger.Warn().Ctx(cmd.Context()).Err(err).Msg("background refresh failed")
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: background refresh failed, cached data may be stale: %v\n", err)
	}
}
