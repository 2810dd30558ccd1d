package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birrdesk/etbrates/market/types"
)

var testSource types.Source = "BinanceP2P"

func saveSnapshot(
	t *testing.T,
	s *Storage,
	direction types.Direction,
	rate float64,
	takenAt time.Time,
) {
	t.Helper()

	require.NoError(t, s.SaveRateSnapshot(context.Background(), &types.RateSnapshot{
		TakenAt:   takenAt,
		Direction: direction,
		Source:    testSource,
		Rate:      rate,
	}))
}

func TestMemory_SnapshotsAsOf(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)

	t.Run("latest per bucket wins", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		saveSnapshot(t, s, types.DirectionBUY, 140, base)
		saveSnapshot(t, s, types.DirectionBUY, 142, base.Add(time.Hour))
		saveSnapshot(t, s, types.DirectionSELL, 150, base)

		page, err := s.SnapshotsAsOf(
			context.Background(),
			&types.SnapshotQuery{},
			base.Add(time.Hour*2),
		)
		require.NoError(t, err)

		require.Len(t, page.Results, 2)
		assert.Equal(t, int64(2), page.Total)

		assert.Equal(t, types.DirectionBUY, page.Results[0].Direction)
		assert.InDelta(t, 142, page.Results[0].Rate, 0.0001)

		assert.Equal(t, types.DirectionSELL, page.Results[1].Direction)
		assert.InDelta(t, 150, page.Results[1].Rate, 0.0001)
	})

	t.Run("cutoff excludes newer snapshots", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		saveSnapshot(t, s, types.DirectionBUY, 140, base)
		saveSnapshot(t, s, types.DirectionBUY, 142, base.Add(time.Hour))

		page, err := s.SnapshotsAsOf(
			context.Background(),
			&types.SnapshotQuery{},
			base.Add(time.Minute),
		)
		require.NoError(t, err)

		require.Len(t, page.Results, 1)
		assert.InDelta(t, 140, page.Results[0].Rate, 0.0001)
	})

	t.Run("direction filter", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		saveSnapshot(t, s, types.DirectionBUY, 140, base)
		saveSnapshot(t, s, types.DirectionSELL, 150, base)

		sell := types.DirectionSELL

		page, err := s.SnapshotsAsOf(
			context.Background(),
			&types.SnapshotQuery{Direction: &sell},
			base.Add(time.Minute),
		)
		require.NoError(t, err)

		require.Len(t, page.Results, 1)
		assert.Equal(t, types.DirectionSELL, page.Results[0].Direction)
	})

	t.Run("negative pagination clamped", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		saveSnapshot(t, s, types.DirectionBUY, 140, base)

		page, err := s.SnapshotsAsOf(
			context.Background(),
			&types.SnapshotQuery{
				Offset: -1,
				Limit:  -5,
			},
			base.Add(time.Minute),
		)
		require.NoError(t, err)

		require.Len(t, page.Results, 1)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		page, err := s.SnapshotsAsOf(
			context.Background(),
			&types.SnapshotQuery{},
			base,
		)
		require.NoError(t, err)

		assert.Empty(t, page.Results)
		assert.Equal(t, int64(0), page.Total)
	})
}

func TestMemory_ListSources(t *testing.T) {
	t.Parallel()

	s := NewStorage()

	saveSnapshot(t, s, types.DirectionBUY, 140, time.Now())

	sources, err := s.ListSources(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.Source{testSource}, sources)
}
