// Package fallback wraps a market.Fetcher and its market.Persistence into reads
// that never fail on provider trouble: every read resolves to live data, the
// most recently stored data, or an explicit empty result with its cause.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"coinlens-api/pkg/market"
)

// Source records where a result came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
	SourceEmpty Source = "empty"
)

// SnapshotResult is the outcome of a wrapped snapshot read.
type SnapshotResult struct {
	Assets []market.AssetSnapshot
	Source Source
	Cause  error
}

// SeriesResult is the outcome of a wrapped series read. Series is nil when
// Source is SourceEmpty.
type SeriesResult struct {
	AssetID    string
	WindowDays int
	Series     *market.TimeSeries
	Source     Source
	Cause      error
}

// Empty reports whether the result carries no usable price samples.
func (r SeriesResult) Empty() bool {
	return r.Series.Empty()
}

// ComparisonResult joins one SeriesResult per requested asset, in request order.
type ComparisonResult struct {
	AssetIDs   []string
	WindowDays int
	Results    map[string]SeriesResult
}

// SeriesMap returns the usable series per asset; empty assets map to nil.
func (c ComparisonResult) SeriesMap() map[string]*market.TimeSeries {
	out := make(map[string]*market.TimeSeries, len(c.AssetIDs))
	for _, id := range c.AssetIDs {
		res := c.Results[id]
		if res.Empty() {
			out[id] = nil
			continue
		}
		out[id] = res.Series
	}
	return out
}

// Service is the cache-fallback orchestrator.
type Service struct {
	fetcher  market.Fetcher
	persist  market.Persistence
	provider string
}

// Option customises a Service.
type Option func(*Service)

// WithProviderName sets the provider key used for persistence lookups. It
// defaults to the fetcher's market.Named name.
func WithProviderName(name string) Option {
	return func(s *Service) {
		if name = strings.TrimSpace(name); name != "" {
			s.provider = name
		}
	}
}

// NewService builds an orchestrator. persist may be nil, in which case provider
// failures resolve straight to empty results.
func NewService(fetcher market.Fetcher, persist market.Persistence, opts ...Option) *Service {
	s := &Service{fetcher: fetcher, persist: persist}
	if named, ok := fetcher.(market.Named); ok {
		s.provider = named.Name()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the provider key used for persistence lookups.
func (s *Service) Provider() string {
	return s.provider
}

// Snapshot reads the top limit assets. Only a ValidationError is returned.
func (s *Service) Snapshot(ctx context.Context, limit int) (SnapshotResult, error) {
	if err := market.ValidateLimit(limit); err != nil {
		return SnapshotResult{}, err
	}
	assets, err := s.fetcher.FetchSnapshot(ctx, limit)
	if err == nil {
		return SnapshotResult{Assets: assets, Source: SourceLive}, nil
	}
	if errors.Is(err, market.ErrValidation) {
		return SnapshotResult{}, err
	}
	logx.WithContext(ctx).Errorf("fallback: snapshot provider=%s limit=%d err=%v", s.provider, limit, err)

	if s.persist == nil {
		return SnapshotResult{Assets: []market.AssetSnapshot{}, Source: SourceEmpty, Cause: err}, nil
	}
	cached, loadErr := s.persist.LoadSnapshots(ctx, s.provider, limit)
	if loadErr != nil || len(cached) == 0 {
		return SnapshotResult{Assets: []market.AssetSnapshot{}, Source: SourceEmpty, Cause: s.cause(ctx, err, loadErr, "snapshot")}, nil
	}
	logx.WithContext(ctx).Infof("fallback: serving %d cached snapshots provider=%s", len(cached), s.provider)
	return SnapshotResult{Assets: cached, Source: SourceCache, Cause: err}, nil
}

// Series reads one asset's history. Only a ValidationError is returned.
func (s *Service) Series(ctx context.Context, assetID string, windowDays int) (SeriesResult, error) {
	return s.SeriesWithInterval(ctx, market.SeriesRequest{AssetID: assetID, WindowDays: windowDays})
}

// SeriesWithInterval is Series with a sampling interval hint for the provider.
// Stored series are keyed by (asset, window) only, so a cached fallback may
// carry a different sampling cadence than requested.
func (s *Service) SeriesWithInterval(ctx context.Context, req market.SeriesRequest) (SeriesResult, error) {
	req.AssetID = strings.TrimSpace(req.AssetID)
	if err := market.ValidateSeriesRequest(req); err != nil {
		return SeriesResult{}, err
	}
	return s.series(ctx, req), nil
}

func (s *Service) series(ctx context.Context, req market.SeriesRequest) SeriesResult {
	result := SeriesResult{AssetID: req.AssetID, WindowDays: req.WindowDays}
	series, err := s.fetcher.FetchSeries(ctx, req)
	if err == nil {
		result.Series, result.Source = series, SourceLive
		return result
	}
	logx.WithContext(ctx).Errorf("fallback: series provider=%s asset=%s days=%d err=%v", s.provider, req.AssetID, req.WindowDays, err)

	result.Source, result.Cause = SourceEmpty, err
	if s.persist == nil {
		return result
	}
	cached, loadErr := s.persist.LoadSeries(ctx, s.provider, req.AssetID, req.WindowDays)
	if loadErr != nil || cached == nil {
		result.Cause = s.cause(ctx, err, loadErr, "series "+req.AssetID)
		return result
	}
	logx.WithContext(ctx).Infof("fallback: serving cached series provider=%s asset=%s days=%d", s.provider, req.AssetID, req.WindowDays)
	result.Series, result.Source = cached, SourceCache
	return result
}

// Comparison issues one wrapped series read per unique asset concurrently and
// joins on all of them. A failing asset degrades to an empty result; only a
// ValidationError is returned.
func (s *Service) Comparison(ctx context.Context, assetIDs []string, windowDays int) (ComparisonResult, error) {
	ids, err := uniqueIDs(assetIDs)
	if err != nil {
		return ComparisonResult{}, err
	}
	if windowDays < 1 {
		return ComparisonResult{}, &market.ValidationError{Field: "windowDays", Reason: fmt.Sprintf("must be >= 1, got %d", windowDays)}
	}

	results := make([]SeriesResult, len(ids))
	group := threading.NewRoutineGroup()
	for i, id := range ids {
		i, id := i, id
		group.RunSafe(func() {
			results[i] = s.series(ctx, market.SeriesRequest{AssetID: id, WindowDays: windowDays})
		})
	}
	group.Wait()

	out := ComparisonResult{AssetIDs: ids, WindowDays: windowDays, Results: make(map[string]SeriesResult, len(ids))}
	for i, id := range ids {
		res := results[i]
		if res.Source == "" {
			// RunSafe recovered a panic before the slot was filled.
			res = SeriesResult{AssetID: id, WindowDays: windowDays, Source: SourceEmpty, Cause: errors.New("fallback: series read aborted")}
		}
		out.Results[id] = res
	}
	return out, nil
}

func (s *Service) cause(ctx context.Context, fetchErr, loadErr error, what string) error {
	if loadErr == nil || market.IsCacheMiss(loadErr) {
		if loadErr != nil && errors.Is(loadErr, market.ErrSerialization) {
			logx.WithContext(ctx).Errorf("fallback: discarding corrupt %s provider=%s err=%v", what, s.provider, loadErr)
		}
		return fetchErr
	}
	logx.WithContext(ctx).Errorf("fallback: load %s provider=%s err=%v", what, s.provider, loadErr)
	return errors.Join(fetchErr, loadErr)
}

func uniqueIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, &market.ValidationError{Field: "assetIds", Reason: "at least one asset id required"}
	}
	return out, nil
}
