package market

import (
	"context"
	"time"
)

// Fetcher exposes provider-agnostic market data reads.
type Fetcher interface {
	// FetchSnapshot returns the top assets ordered by descending market cap, truncated to limit.
	FetchSnapshot(ctx context.Context, limit int) ([]AssetSnapshot, error)
	// FetchSeries returns price/market-cap/volume history covering windowDays.
	FetchSeries(ctx context.Context, req SeriesRequest) (*TimeSeries, error)
}

// Named is implemented by fetchers that know their registry name.
type Named interface {
	Name() string
}

// SeriesRequest parameterises a per-asset chart request.
type SeriesRequest struct {
	AssetID    string
	WindowDays int
	Interval   string // Optional sampling hint, e.g. "hourly"
}

// AssetSnapshot captures one asset's current market metrics.
type AssetSnapshot struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	CurrentPrice float64   `json:"current_price"`
	MarketCap    float64   `json:"market_cap"`
	Rank         int       `json:"market_cap_rank"`
	TotalVolume  float64   `json:"total_volume"`
	Change24h    float64   `json:"price_change_percentage_24h"`
	Change7d     *float64  `json:"price_change_percentage_7d,omitempty"`
	Change30d    *float64  `json:"price_change_percentage_30d,omitempty"`
	Image        string    `json:"image"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Point is a single (timestamp, value) sample. Timestamps are unix milliseconds.
type Point struct {
	Timestamp int64
	Value     float64
}

// Time returns the sample timestamp in UTC.
func (p Point) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

// TimeSeries holds parallel price, market cap and volume sequences for a window.
type TimeSeries struct {
	Prices       []Point `json:"prices"`
	MarketCaps   []Point `json:"market_caps"`
	TotalVolumes []Point `json:"total_volumes"`
}

// Empty reports whether the series carries no price samples.
func (s *TimeSeries) Empty() bool {
	return s == nil || len(s.Prices) == 0
}

// Clone returns a deep copy so callers never share backing arrays.
func (s *TimeSeries) Clone() *TimeSeries {
	if s == nil {
		return nil
	}
	return &TimeSeries{
		Prices:       clonePoints(s.Prices),
		MarketCaps:   clonePoints(s.MarketCaps),
		TotalVolumes: clonePoints(s.TotalVolumes),
	}
}

func clonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// CloneSnapshots copies a snapshot list, including the optional change pointers.
func CloneSnapshots(in []AssetSnapshot) []AssetSnapshot {
	if in == nil {
		return nil
	}
	out := make([]AssetSnapshot, len(in))
	for i, snap := range in {
		if snap.Change7d != nil {
			v := *snap.Change7d
			snap.Change7d = &v
		}
		if snap.Change30d != nil {
			v := *snap.Change30d
			snap.Change30d = &v
		}
		out[i] = snap
	}
	return out
}
