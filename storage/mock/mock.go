package mock

import (
	"context"
	"time"

	"github.com/birrdesk/etbrates/market/types"
)

type (
	SaveRateSnapshotDelegate func(context.Context, *types.RateSnapshot) error
	SnapshotsAsOfDelegate    func(context.Context, *types.SnapshotQuery, time.Time) (*types.Page[*types.RateSnapshot], error)
	ListSourcesDelegate      func(context.Context) ([]types.Source, error)
)

type Storage struct {
	SaveRateSnapshotFn SaveRateSnapshotDelegate
	SnapshotsAsOfFn    SnapshotsAsOfDelegate
	ListSourcesFn      ListSourcesDelegate
}

func (m *Storage) SaveRateSnapshot(ctx context.Context, snapshot *types.RateSnapshot) error {
	if m.SaveRateSnapshotFn != nil {
		return m.SaveRateSnapshotFn(ctx, snapshot)
	}

	return nil
}

func (m *Storage) SnapshotsAsOf(
	ctx context.Context,
	query *types.SnapshotQuery,
	at time.Time,
) (*types.Page[*types.RateSnapshot], error) {
	if m.SnapshotsAsOfFn != nil {
		return m.SnapshotsAsOfFn(ctx, query, at)
	}

	return nil, nil
}

func (m *Storage) ListSources(ctx context.Context) ([]types.Source, error) {
	if m.ListSourcesFn != nil {
		return m.ListSourcesFn(ctx)
	}

	return nil, nil
}
