package svc

import (
	"context"
	"sync"
	"time"

	"coinlens-api/pkg/market/fallback"
	"coinlens-api/pkg/poller"
	"coinlens-api/pkg/viewstate"
)

const defaultRefreshLimit = 20

// SnapshotRefresher keeps the latest snapshot warm on a poller. Refreshes may
// overlap with on-demand calls; only the newest issued refresh is applied.
type SnapshotRefresher struct {
	fallback *fallback.Service
	limit    int
	poller   *poller.Poller
	gens     viewstate.Generations
	now      func() time.Time

	mu        sync.RWMutex
	latest    fallback.SnapshotResult
	refreshed time.Time
}

// NewSnapshotRefresher builds a stopped refresher.
func NewSnapshotRefresher(svc *fallback.Service, limit int, interval time.Duration) *SnapshotRefresher {
	if limit <= 0 {
		limit = defaultRefreshLimit
	}
	r := &SnapshotRefresher{fallback: svc, limit: limit, now: time.Now}
	r.poller = poller.New("snapshot-refresh", interval, r.Refresh)
	return r
}

// Limit returns the refreshed snapshot size.
func (r *SnapshotRefresher) Limit() int {
	return r.limit
}

// Refresh reads the snapshot through the fallback service and stores it unless
// a newer refresh was issued in the meantime.
func (r *SnapshotRefresher) Refresh(ctx context.Context) error {
	token := r.gens.Next()
	res, err := r.fallback.Snapshot(ctx, r.limit)
	if err != nil {
		return err
	}
	r.gens.Apply(token, func() {
		r.mu.Lock()
		r.latest, r.refreshed = res, r.now().UTC()
		r.mu.Unlock()
	})
	return nil
}

// Latest returns the last applied result and when it was refreshed.
func (r *SnapshotRefresher) Latest() (fallback.SnapshotResult, time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.refreshed, !r.refreshed.IsZero()
}

// Start begins periodic refreshes tied to ctx.
func (r *SnapshotRefresher) Start(ctx context.Context) error {
	return r.poller.Start(ctx)
}

// Stop halts periodic refreshes.
func (r *SnapshotRefresher) Stop() {
	r.poller.Stop()
}
