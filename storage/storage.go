package storage

import (
	"context"
	"time"

	"github.com/birrdesk/etbrates/market/types"
)

// Storage is an abstraction over observed rate snapshot data
type Storage interface {
	// SaveRateSnapshot saves the given rate snapshot data point
	SaveRateSnapshot(context.Context, *types.RateSnapshot) error

	// SnapshotsAsOf fetches the latest snapshot per direction and
	// source, as of the given time
	SnapshotsAsOf(context.Context, *types.SnapshotQuery, time.Time) (*types.Page[*types.RateSnapshot], error)

	// ListSources lists all present snapshot sources
	ListSources(context.Context) ([]types.Source, error)
}
