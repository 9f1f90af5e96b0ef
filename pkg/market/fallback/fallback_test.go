package fallback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinlens-api/pkg/market"
	"coinlens-api/pkg/market/chart"
	"coinlens-api/pkg/market/memory"
)

type stubFetcher struct {
	mu        sync.Mutex
	snapshots []market.AssetSnapshot
	series    map[string]*market.TimeSeries
	failAll   bool
	failIDs   map[string]bool
	calls     []string
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) FetchSnapshot(_ context.Context, limit int) ([]market.AssetSnapshot, error) {
	if f.failAll {
		return nil, &market.ProviderError{Provider: "stub", Op: "markets", StatusCode: 429}
	}
	out := f.snapshots
	if len(out) > limit {
		out = out[:limit]
	}
	return market.CloneSnapshots(out), nil
}

func (f *stubFetcher) FetchSeries(_ context.Context, req market.SeriesRequest) (*market.TimeSeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.AssetID)
	f.mu.Unlock()
	if f.failAll || f.failIDs[req.AssetID] {
		return nil, &market.ProviderError{Provider: "stub", Op: "market_chart", AssetID: req.AssetID, Err: errors.New("connection refused")}
	}
	s, ok := f.series[req.AssetID]
	if !ok {
		return &market.TimeSeries{}, nil
	}
	return s.Clone(), nil
}

func series(values ...float64) *market.TimeSeries {
	out := &market.TimeSeries{}
	for i, v := range values {
		out.Prices = append(out.Prices, market.Point{Timestamp: int64(i) * 3600_000, Value: v})
	}
	return out
}

func TestSeriesLive(t *testing.T) {
	fetcher := &stubFetcher{series: map[string]*market.TimeSeries{"bitcoin": series(1, 2, 3)}}
	svc := NewService(fetcher, memory.New())
	assert.Equal(t, "stub", svc.Provider())

	res, err := svc.Series(context.Background(), "bitcoin", 30)
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)
	assert.NoError(t, res.Cause)
	assert.Len(t, res.Series.Prices, 3)
}

func TestSeriesFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.StoreSeries(ctx, "stub", "bitcoin", 30, series(10, 11), time.Now()))

	fetcher := &stubFetcher{failAll: true}
	svc := NewService(fetcher, store)

	res, err := svc.Series(ctx, "bitcoin", 30)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.True(t, market.IsProviderError(res.Cause))
	require.NotNil(t, res.Series)
	assert.Equal(t, 11.0, res.Series.Prices[1].Value)
}

func TestSeriesCacheMissIsEmpty(t *testing.T) {
	svc := NewService(&stubFetcher{failAll: true}, memory.New())
	res, err := svc.Series(context.Background(), "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, SourceEmpty, res.Source)
	assert.Nil(t, res.Series)
	assert.True(t, res.Empty())
	assert.True(t, market.IsProviderError(res.Cause))
}

func TestSeriesWithoutPersistence(t *testing.T) {
	svc := NewService(&stubFetcher{failAll: true}, nil, WithProviderName("other"))
	assert.Equal(t, "other", svc.Provider())
	res, err := svc.Series(context.Background(), "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, SourceEmpty, res.Source)
}

type corruptStore struct{ *memory.Store }

func (corruptStore) LoadSeries(context.Context, string, string, int) (*market.TimeSeries, error) {
	return nil, &market.SerializationError{Key: "series", Err: errors.New("unexpected end of JSON input")}
}

func (corruptStore) LoadSnapshots(context.Context, string, int) ([]market.AssetSnapshot, error) {
	return nil, errors.New("connection reset")
}

func TestCorruptCacheTreatedAsMiss(t *testing.T) {
	svc := NewService(&stubFetcher{failAll: true}, corruptStore{memory.New()})
	res, err := svc.Series(context.Background(), "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, SourceEmpty, res.Source)
	assert.True(t, market.IsProviderError(res.Cause))
	assert.False(t, errors.Is(res.Cause, market.ErrSerialization))

	snap, err := svc.Snapshot(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, SourceEmpty, snap.Source)
	assert.ErrorContains(t, snap.Cause, "connection reset")
	assert.NotNil(t, snap.Assets)
}

func TestValidationSurfacesBeforeIO(t *testing.T) {
	fetcher := &stubFetcher{}
	svc := NewService(fetcher, memory.New())
	ctx := context.Background()

	_, err := svc.Series(ctx, " ", 30)
	assert.ErrorIs(t, err, market.ErrValidation)
	_, err = svc.Series(ctx, "bitcoin", 0)
	assert.ErrorIs(t, err, market.ErrValidation)
	_, err = svc.Snapshot(ctx, 0)
	assert.ErrorIs(t, err, market.ErrValidation)
	_, err = svc.Comparison(ctx, []string{"", " "}, 30)
	assert.ErrorIs(t, err, market.ErrValidation)
	_, err = svc.Comparison(ctx, []string{"bitcoin"}, -1)
	assert.ErrorIs(t, err, market.ErrValidation)
	assert.Empty(t, fetcher.calls)
}

func TestSnapshotFallback(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	snaps := []market.AssetSnapshot{{ID: "bitcoin", Rank: 1}, {ID: "ethereum", Rank: 2}}
	require.NoError(t, store.StoreSnapshots(ctx, "stub", snaps, time.Now()))

	live := NewService(&stubFetcher{snapshots: snaps}, store)
	res, err := live.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)
	assert.Len(t, res.Assets, 1)

	cached := NewService(&stubFetcher{failAll: true}, store)
	res, err = cached.Snapshot(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	require.Len(t, res.Assets, 2)
	assert.Equal(t, "bitcoin", res.Assets[0].ID)

	empty := NewService(&stubFetcher{failAll: true}, memory.New())
	res, err = empty.Snapshot(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, SourceEmpty, res.Source)
	assert.Empty(t, res.Assets)
}

func TestComparisonDegradesPerAsset(t *testing.T) {
	fetcher := &stubFetcher{
		series:  map[string]*market.TimeSeries{"bitcoin": series(100, 110, 120)},
		failIDs: map[string]bool{"solana": true},
	}
	svc := NewService(fetcher, memory.New())

	res, err := svc.Comparison(context.Background(), []string{"bitcoin", "ethereum", "solana", "bitcoin"}, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana"}, res.AssetIDs)
	assert.Len(t, fetcher.calls, 3)
	assert.Equal(t, SourceLive, res.Results["bitcoin"].Source)
	assert.Equal(t, SourceLive, res.Results["ethereum"].Source)
	assert.True(t, res.Results["ethereum"].Empty())
	assert.Equal(t, SourceEmpty, res.Results["solana"].Source)

	seriesMap := res.SeriesMap()
	assert.Nil(t, seriesMap["ethereum"])
	assert.Nil(t, seriesMap["solana"])

	aligned := chart.AlignSeries(res.AssetIDs, seriesMap, chart.FieldPrice)
	require.Len(t, aligned, 3)
	for _, p := range aligned {
		assert.Contains(t, p.Values, "bitcoin")
		assert.NotContains(t, p.Values, "ethereum")
		assert.NotContains(t, p.Values, "solana")
	}
}
