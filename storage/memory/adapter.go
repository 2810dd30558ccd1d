package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/birrdesk/etbrates/market/types"
)

type key struct {
	direction, source string
	takenAt           int64 // unix nanos
}

type Storage struct {
	data map[key]types.RateSnapshot

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[key]types.RateSnapshot),
	}
}

func (s *Storage) SaveRateSnapshot(_ context.Context, snapshot *types.RateSnapshot) error {
	k := key{
		direction: snapshot.Direction.String(),
		source:    snapshot.Source.String(),
		takenAt:   snapshot.TakenAt.UTC().UnixNano(),
	}

	elem := *snapshot
	elem.TakenAt = elem.TakenAt.UTC()

	s.mu.Lock()
	s.data[k] = elem // key is unique
	s.mu.Unlock()

	return nil
}

func (s *Storage) SnapshotsAsOf(
	_ context.Context,
	query *types.SnapshotQuery,
	asOf time.Time,
) (*types.Page[*types.RateSnapshot], error) {
	cutoff := asOf.UTC()

	var (
		direction, source       string
		hasDirection, hasSource bool
	)

	if query.Direction != nil {
		direction = query.Direction.String()
		hasDirection = true
	}

	if query.Source != nil {
		source = query.Source.String()
		hasSource = true
	}

	type bucket struct {
		direction, source string
	}

	s.mu.RLock()

	bestByBucket := make(map[bucket]types.RateSnapshot)

	for _, v := range s.data {
		if hasDirection && v.Direction.String() != direction {
			continue
		}

		if hasSource && v.Source.String() != source {
			continue
		}

		if v.TakenAt.After(cutoff) {
			continue
		}

		b := bucket{
			direction: v.Direction.String(),
			source:    v.Source.String(),
		}

		cur, ok := bestByBucket[b]
		if !ok || v.TakenAt.After(cur.TakenAt) {
			bestByBucket[b] = v
		}
	}

	s.mu.RUnlock()

	out := make([]*types.RateSnapshot, 0, len(bestByBucket))
	for _, v := range bestByBucket {
		cp := v
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Direction != out[j].Direction {
			return out[i].Direction.String() < out[j].Direction.String()
		}

		return out[i].Source.String() < out[j].Source.String()
	})

	total := int64(len(out))
	if total == 0 {
		return &types.Page[*types.RateSnapshot]{
			Results: nil,
			Total:   0,
		}, nil
	}

	// Out-of-range pagination values are clamped, never trusted
	lim := query.Limit
	if lim <= 0 {
		lim = 100
	}

	if lim > 500 {
		lim = 500
	}

	off := query.Offset
	if off < 0 {
		off = 0
	}

	if off > total {
		return &types.Page[*types.RateSnapshot]{
			Results: nil,
			Total:   total,
		}, nil
	}

	start := int(off)
	end := start + int(lim)

	if end > len(out) {
		end = len(out)
	}

	return &types.Page[*types.RateSnapshot]{
		Results: out[start:end],
		Total:   total,
	}, nil
}

func (s *Storage) ListSources(_ context.Context) ([]types.Source, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for k := range s.data {
		seen[k.source] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]types.Source, 0, len(seen))

	for v := range seen {
		out = append(out, types.Source(v))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})

	return out, nil
}
