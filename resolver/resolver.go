// Package resolver maintains the ticker symbol to provider identifier
// mapping, refreshed lazily from the bulk listing endpoint
package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/birrdesk/etbrates/market/types"
)

// staleAfter is the cache invalidation threshold; the listing barely
// changes, so a daily refresh is enough
const staleAfter = time.Hour * 24

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// ListingFetcher fetches the full provider symbol listing
type ListingFetcher interface {
	CoinList(ctx context.Context) ([]types.CoinListing, error)
}

// Resolver resolves ticker symbols to stable provider identifiers.
// The backing cache is either empty or fully populated from one
// successful bulk fetch; partial states never occur
type Resolver struct {
	fetcher ListingFetcher
	logger  *slog.Logger
	nowFn   func() time.Time

	refreshMu sync.Mutex // serializes refreshes

	mu              sync.RWMutex
	ids             map[string]string
	lastRefreshedAt time.Time
}

// New creates a new symbol resolver
func New(fetcher ListingFetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		logger:  noopLogger,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	// Apply the options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve looks up the provider identifier for the given symbol,
// case-insensitively. A refresh is attempted when the cache is empty
// or stale; a failed refresh on a previously populated cache falls
// back to the stale data. An unknown symbol yields ok == false,
// never an error
func (r *Resolver) Resolve(ctx context.Context, symbol types.Symbol) (string, bool) {
	if r.stale() {
		if err := r.Refresh(ctx); err != nil {
			r.logger.Error(
				"unable to refresh symbol listing",
				"err", err,
			)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.ids[strings.ToLower(symbol.String())]

	return id, ok
}

// Refresh fetches the full symbol listing and replaces the cache in
// one visible step. On failure the previous state is left untouched.
// Overlapping refreshes serialize, and a refresh that finds the cache
// already fresh (an overlapping caller won) skips the upstream call
func (r *Resolver) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	if !r.stale() {
		return nil
	}

	listings, err := r.fetcher.CoinList(ctx)
	if err != nil {
		return fmt.Errorf("unable to fetch symbol listing: %w", err)
	}

	ids := make(map[string]string, len(listings))
	for _, listing := range listings {
		ids[strings.ToLower(listing.Symbol)] = listing.ID
	}

	r.mu.Lock()
	r.ids = ids
	r.lastRefreshedAt = r.nowFn()
	r.mu.Unlock()

	r.logger.Info(
		"symbol listing refreshed",
		"symbols", len(ids),
	)

	return nil
}

// stale checks if the cache needs a refresh, as of the moment of calling
func (r *Resolver) stale() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return shouldRefresh(r.nowFn(), r.lastRefreshedAt)
}

// shouldRefresh reports whether a cache last refreshed at the given
// time needs a refresh. A zero timestamp means never populated
func shouldRefresh(now, lastRefreshedAt time.Time) bool {
	if lastRefreshedAt.IsZero() {
		return true
	}

	return now.Sub(lastRefreshedAt) > staleAfter
}
