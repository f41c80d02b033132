// Package refresh implements stale-while-revalidate access to cached tables.
//
// Obtain serves a Warm entry immediately and refreshes it in the background;
// a Cold entry is fetched, built, and persisted before Obtain returns. The
// background refresh must be joined with Refresh.Wait before the invocation
// ends so failures are reported and the write has been attempted.
package refresh

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/gss-search/internal/cache"
	"github.com/rshade/gss-search/internal/locator"
	"github.com/rshade/gss-search/internal/logging"
	"github.com/rshade/gss-search/internal/table"
)

// State says whether a valid cache entry existed when Obtain was called.
type State int

const (
	// Cold means the table was fetched synchronously.
	Cold State = iota
	// Warm means the cached table was served and a refresh started.
	Warm
)

func (s State) String() string {
	if s == Warm {
		return "warm"
	}
	return "cold"
}

// FetchFunc returns the raw cell values for loc.
type FetchFunc func(ctx context.Context, loc locator.Locator) ([][]any, error)

// Store is the part of the cache the orchestrator uses.
type Store interface {
	PathFor(loc locator.Locator) string
	Load(path string) (*table.Table, error)
	Save(path string, tbl *table.Table) error
}

// Orchestrator coordinates cache reads with remote fetches.
type Orchestrator struct {
	store Store
	fetch FetchFunc
}

// New creates an Orchestrator over store that fetches with fetch.
func New(store Store, fetch FetchFunc) *Orchestrator {
	return &Orchestrator{store: store, fetch: fetch}
}

// Result is the outcome of Obtain.
type Result struct {
	Table *table.Table
	State State

	// Refresh is the background refresh for a Warm result, nil when Cold.
	Refresh *Refresh
}

// Refresh is a background fetch-build-save that must be joined.
type Refresh struct {
	g errgroup.Group
}

// Wait blocks until the refresh finishes and returns its error.
// It is safe on a nil Refresh.
func (r *Refresh) Wait() error {
	if r == nil {
		return nil
	}
	return r.g.Wait()
}

// Obtain returns the table for loc.
//
// Warm: the cached table is returned without waiting on the network and a
// refresh is started that outlives ctx cancellation. Cold (including a
// corrupt entry): the table is fetched, persisted, and returned; any failure
// is returned.
func (o *Orchestrator) Obtain(ctx context.Context, loc locator.Locator) (*Result, error) {
	log := componentLogger(ctx)
	path := o.store.PathFor(loc)

	cached, err := o.store.Load(path)
	switch {
	case err == nil:
		log.Debug().Ctx(ctx).
			Str("locator", loc.String()).
			Int("body_rows", len(cached.Body)).
			Msg("serving cached table, refreshing in background")
		return &Result{Table: cached, State: Warm, Refresh: o.startRefresh(ctx, loc)}, nil
	case errors.Is(err, cache.ErrCacheMiss):
		log.Debug().Ctx(ctx).Str("locator", loc.String()).Msg("cache miss")
	case errors.Is(err, cache.ErrCacheCorrupt):
		log.Warn().Ctx(ctx).Err(err).Str("locator", loc.String()).Msg("discarding corrupt cache entry")
	default:
		return nil, err
	}

	tbl, err := o.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	return &Result{Table: tbl, State: Cold}, nil
}

// Fetch fetches loc, builds a fresh table, and overwrites its cache entry.
func (o *Orchestrator) Fetch(ctx context.Context, loc locator.Locator) (*table.Table, error) {
	values, err := o.fetch(ctx, loc)
	if err != nil {
		return nil, err
	}

	tbl := table.FromValues(values)
	path := o.store.PathFor(loc)
	if err = o.store.Save(path, tbl); err != nil {
		return nil, fmt.Errorf("saving %s: %w", loc, err)
	}

	logger := componentLogger(ctx)
	logger.Info().Ctx(ctx).
		Str("locator", loc.String()).
		Str("path", path).
		Int("body_rows", len(tbl.Body)).
		Int("columns", len(tbl.Columns)).
		Msg("cache updated")
	return tbl, nil
}

func (o *Orchestrator) startRefresh(ctx context.Context, loc locator.Locator) *Refresh {
	bg := context.WithoutCancel(ctx)
	r := &Refresh{}
	r.g.Go(func() error {
		if _, err := o.Fetch(bg, loc); err != nil {
			logger := componentLogger(bg)
			logger.Warn().Ctx(bg).Err(err).
				Str("locator", loc.String()).
				Msg("background refresh failed, cached table was served")
			return err
		}
		return nil
	})
	return r
}

func componentLogger(ctx context.Context) zerolog.Logger {
	return logging.ComponentLogger(*logging.FromContext(ctx), "refresh")
}
