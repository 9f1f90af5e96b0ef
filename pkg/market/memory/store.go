// Package memory provides an in-process market.Persistence. Every record is
// copied on the way in and out, so callers never share mutable state with it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"coinlens-api/pkg/market"
)

var _ market.Persistence = (*Store)(nil)

type snapshotRecord struct {
	snapshot   market.AssetSnapshot
	capturedAt time.Time
}

type seriesRecord struct {
	series     *market.TimeSeries
	capturedAt time.Time
}

// Store keeps the most recent snapshot per (provider, asset) and the most recent
// series per (provider, asset, window). Last write wins.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]map[string]snapshotRecord
	series    map[string]seriesRecord
}

// New returns an empty store.
func New() *Store {
	return &Store{
		snapshots: make(map[string]map[string]snapshotRecord),
		series:    make(map[string]seriesRecord),
	}
}

// StoreSnapshots replaces the stored snapshot for every asset in the batch.
func (s *Store) StoreSnapshots(_ context.Context, provider string, snapshots []market.AssetSnapshot, capturedAt time.Time) error {
	batch := market.CloneSnapshots(snapshots)
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.snapshots[provider]
	if !ok {
		rows = make(map[string]snapshotRecord)
		s.snapshots[provider] = rows
	}
	for _, snap := range batch {
		if snap.ID == "" {
			continue
		}
		rows[snap.ID] = snapshotRecord{snapshot: snap, capturedAt: capturedAt}
	}
	return nil
}

// LoadSnapshots returns stored snapshots ordered by rank, truncated to limit.
func (s *Store) LoadSnapshots(_ context.Context, provider string, limit int) ([]market.AssetSnapshot, error) {
	s.mu.RLock()
	rows := s.snapshots[provider]
	out := make([]market.AssetSnapshot, 0, len(rows))
	for _, rec := range rows {
		out = append(out, rec.snapshot)
	}
	s.mu.RUnlock()

	if len(out) == 0 {
		return nil, market.ErrCacheMiss
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return market.CloneSnapshots(out), nil
}

// StoreSeries replaces the stored series for (provider, asset, window).
func (s *Store) StoreSeries(_ context.Context, provider, assetID string, windowDays int, series *market.TimeSeries, capturedAt time.Time) error {
	rec := seriesRecord{series: series.Clone(), capturedAt: capturedAt}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[seriesKey(provider, assetID, windowDays)] = rec
	return nil
}

// LoadSeries returns the stored series for (provider, asset, window).
func (s *Store) LoadSeries(_ context.Context, provider, assetID string, windowDays int) (*market.TimeSeries, error) {
	s.mu.RLock()
	rec, ok := s.series[seriesKey(provider, assetID, windowDays)]
	s.mu.RUnlock()
	if !ok || rec.series == nil {
		return nil, market.ErrCacheMiss
	}
	return rec.series.Clone(), nil
}

func seriesKey(provider, assetID string, windowDays int) string {
	return fmt.Sprintf("%s|%s|%d", provider, assetID, windowDays)
}
