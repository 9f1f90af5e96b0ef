package market

import (
	"context"
	"time"
)

// Persistence stores the latest successful provider reads so they can serve as
// a fallback when the provider is unreachable. Loads return ErrCacheMiss (or a
// SerializationError for corrupt records) when nothing usable is stored.
type Persistence interface {
	// StoreSnapshots upserts one row per asset for the capture time.
	StoreSnapshots(ctx context.Context, provider string, snapshots []AssetSnapshot, capturedAt time.Time) error
	// LoadSnapshots returns the most recent snapshot per asset, ordered by rank.
	LoadSnapshots(ctx context.Context, provider string, limit int) ([]AssetSnapshot, error)
	// StoreSeries records the series for (assetID, windowDays) at the capture time.
	StoreSeries(ctx context.Context, provider, assetID string, windowDays int, series *TimeSeries, capturedAt time.Time) error
	// LoadSeries returns the most recently stored series for (assetID, windowDays).
	LoadSeries(ctx context.Context, provider, assetID string, windowDays int) (*TimeSeries, error)
}
