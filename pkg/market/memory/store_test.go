package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinlens-api/pkg/market"
)

func TestSnapshotsOrderedByRankAndTruncated(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.LoadSnapshots(ctx, "cg", 10)
	assert.ErrorIs(t, err, market.ErrCacheMiss)

	now := time.Now()
	require.NoError(t, s.StoreSnapshots(ctx, "cg", []market.AssetSnapshot{
		{ID: "solana", Rank: 5},
		{ID: "bitcoin", Rank: 1},
		{ID: "", Rank: 2},
		{ID: "ethereum", Rank: 2},
	}, now))
	require.NoError(t, s.StoreSnapshots(ctx, "cg", []market.AssetSnapshot{{ID: "bitcoin", Rank: 1, CurrentPrice: 2}}, now.Add(time.Minute)))

	got, err := s.LoadSnapshots(ctx, "cg", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bitcoin", got[0].ID)
	assert.Equal(t, 2.0, got[0].CurrentPrice)
	assert.Equal(t, "ethereum", got[1].ID)

	_, err = s.LoadSnapshots(ctx, "other", 2)
	assert.ErrorIs(t, err, market.ErrCacheMiss)
}

func TestSnapshotsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()
	change := 3.5
	in := []market.AssetSnapshot{{ID: "bitcoin", Rank: 1, Change7d: &change}}
	require.NoError(t, s.StoreSnapshots(ctx, "cg", in, time.Now()))

	in[0].Rank = 99
	change = -1

	got, err := s.LoadSnapshots(ctx, "cg", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got[0].Rank)
	require.NotNil(t, got[0].Change7d)
	assert.Equal(t, 3.5, *got[0].Change7d)
}

func TestSeriesLastWriteWinsAndCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.LoadSeries(ctx, "cg", "bitcoin", 30)
	assert.True(t, market.IsCacheMiss(err))

	first := &market.TimeSeries{Prices: []market.Point{{Timestamp: 1, Value: 1}}}
	second := &market.TimeSeries{Prices: []market.Point{{Timestamp: 1, Value: 2}, {Timestamp: 2, Value: 3}}}
	require.NoError(t, s.StoreSeries(ctx, "cg", "bitcoin", 30, first, time.Now()))
	require.NoError(t, s.StoreSeries(ctx, "cg", "bitcoin", 30, second, time.Now()))
	second.Prices[0].Value = 100

	got, err := s.LoadSeries(ctx, "cg", "bitcoin", 30)
	require.NoError(t, err)
	require.Len(t, got.Prices, 2)
	assert.Equal(t, 2.0, got.Prices[0].Value)

	got.Prices[0].Value = 50
	again, err := s.LoadSeries(ctx, "cg", "bitcoin", 30)
	require.NoError(t, err)
	assert.Equal(t, 2.0, again.Prices[0].Value)

	_, err = s.LoadSeries(ctx, "cg", "bitcoin", 7)
	assert.ErrorIs(t, err, market.ErrCacheMiss)
}
