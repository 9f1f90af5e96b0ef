package collector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinlens-api/pkg/market"
)

type recordingFetcher struct {
	snapshots   []market.AssetSnapshot
	snapshotErr error
	failSeries  map[string]bool
	limits      []int
	series      []market.SeriesRequest
}

func (f *recordingFetcher) FetchSnapshot(_ context.Context, limit int) ([]market.AssetSnapshot, error) {
	f.limits = append(f.limits, limit)
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	if len(f.snapshots) > limit {
		return f.snapshots[:limit], nil
	}
	return f.snapshots, nil
}

func (f *recordingFetcher) FetchSeries(_ context.Context, req market.SeriesRequest) (*market.TimeSeries, error) {
	f.series = append(f.series, req)
	if f.failSeries[req.AssetID] {
		return nil, &market.ProviderError{Provider: "test", Op: "market_chart", AssetID: req.AssetID, StatusCode: 500}
	}
	return &market.TimeSeries{}, nil
}

func ranked(ids ...string) []market.AssetSnapshot {
	out := make([]market.AssetSnapshot, len(ids))
	for i, id := range ids {
		out[i] = market.AssetSnapshot{ID: id, Name: strings.ToUpper(id), Rank: i + 1}
	}
	return out
}

func TestRunDefaults(t *testing.T) {
	fetcher := &recordingFetcher{snapshots: ranked("a", "b", "c", "d", "e", "f", "g")}
	job := NewJob(fetcher, Config{})
	report := job.Run(context.Background())

	require.True(t, report.Success, report.Error)
	assert.NoError(t, report.Err)
	assert.Equal(t, []int{20}, fetcher.limits)
	assert.Equal(t, 7, report.Snapshots)
	assert.Equal(t, 5, report.Processed)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, report.Assets)
	require.Len(t, fetcher.series, 5)
	for _, req := range fetcher.series {
		assert.Equal(t, 30, req.WindowDays)
	}
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	assert.NotEmpty(t, report.Message)
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	fetcher := &recordingFetcher{
		snapshots:  ranked("a", "b", "c", "d", "e"),
		failSeries: map[string]bool{"b": true},
	}
	report := NewJob(fetcher, DefaultConfig()).Run(context.Background())

	assert.False(t, report.Success)
	assert.True(t, market.IsProviderError(report.Err))
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, []string{"b"}, report.Failed)
	assert.Len(t, fetcher.series, 2)
	assert.Contains(t, report.Error, "history b")
}

func TestRunContinueOnError(t *testing.T) {
	fetcher := &recordingFetcher{
		snapshots:  ranked("a", "b", "c"),
		failSeries: map[string]bool{"b": true},
	}
	cfg := DefaultConfig()
	cfg.ContinueOnError = true
	report := NewJob(fetcher, cfg).Run(context.Background())

	assert.True(t, report.Success)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, []string{"a", "c"}, report.Assets)
	assert.Equal(t, []string{"b"}, report.Failed)

	allFail := &recordingFetcher{snapshots: ranked("a"), failSeries: map[string]bool{"a": true}}
	report = NewJob(allFail, cfg).Run(context.Background())
	assert.False(t, report.Success)
	assert.Equal(t, 0, report.Processed)
}

func TestRunSnapshotFailure(t *testing.T) {
	fetcher := &recordingFetcher{snapshotErr: errors.New("dial tcp: timeout")}
	report := NewJob(fetcher, DefaultConfig()).Run(context.Background())
	assert.False(t, report.Success)
	assert.Zero(t, report.Snapshots)
	assert.Empty(t, fetcher.series)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := &recordingFetcher{snapshots: ranked("a", "b")}
	report := NewJob(fetcher, DefaultConfig()).Run(ctx)
	assert.ErrorIs(t, report.Err, context.Canceled)
	assert.Empty(t, fetcher.series)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("COLLECT_DAYS", "14")
	cfg, err := LoadConfigFromReader(strings.NewReader(`
limit: 10
top_n: 3
window_days: ${COLLECT_DAYS}
interval: 15m
continue_on_error: true
`))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, 3, cfg.TopN)
	assert.Equal(t, 14, cfg.WindowDays)
	assert.Equal(t, 15*time.Minute, cfg.IntervalDuration)
	assert.True(t, cfg.ContinueOnError)

	defaults, err := LoadConfigFromReader(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *defaults)

	_, err = LoadConfigFromReader(strings.NewReader("interval: soon"))
	assert.ErrorContains(t, err, "invalid interval")
	_, err = LoadConfigFromReader(strings.NewReader("limit: -1"))
	assert.ErrorContains(t, err, "limit")
}
