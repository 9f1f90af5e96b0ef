package coingecko

import (
	"strings"
	"time"

	"coinlens-api/pkg/market"
)

// changeHorizons are the percent-change windows requested with every snapshot.
var changeHorizons = []string{"24h", "7d", "30d"}

// MarketsRequest carries parameters for the /coins/markets listing.
type MarketsRequest struct {
	Order   string // defaults to market_cap_desc
	PerPage int
	Page    int // 1-based, defaults to 1
}

// MarketEntry mirrors one element of the /coins/markets payload.
type MarketEntry struct {
	ID                  string   `json:"id"`
	Symbol              string   `json:"symbol"`
	Name                string   `json:"name"`
	Image               string   `json:"image"`
	CurrentPrice        *float64 `json:"current_price"`
	MarketCap           *float64 `json:"market_cap"`
	MarketCapRank       *int     `json:"market_cap_rank"`
	TotalVolume         *float64 `json:"total_volume"`
	Change24h           *float64 `json:"price_change_percentage_24h"`
	Change24hInCurrency *float64 `json:"price_change_percentage_24h_in_currency"`
	Change7dInCurrency  *float64 `json:"price_change_percentage_7d_in_currency"`
	Change30dInCurrency *float64 `json:"price_change_percentage_30d_in_currency"`
	LastUpdated         string   `json:"last_updated"`
}

// ChartRequest carries parameters for the /coins/{id}/market_chart request.
type ChartRequest struct {
	AssetID  string
	Days     int
	Interval string
}

// ChartResponse mirrors the market_chart payload: [[ms, value], ...] triples.
type ChartResponse struct {
	Prices       []market.Point `json:"prices"`
	MarketCaps   []market.Point `json:"market_caps"`
	TotalVolumes []market.Point `json:"total_volumes"`
}

func (e MarketEntry) toSnapshot() market.AssetSnapshot {
	snap := market.AssetSnapshot{
		ID:        e.ID,
		Symbol:    strings.ToUpper(e.Symbol),
		Name:      e.Name,
		Image:     e.Image,
		Change7d:  e.Change7dInCurrency,
		Change30d: e.Change30dInCurrency,
	}
	snap.CurrentPrice = deref(e.CurrentPrice)
	snap.MarketCap = deref(e.MarketCap)
	snap.TotalVolume = deref(e.TotalVolume)
	switch {
	case e.Change24h != nil:
		snap.Change24h = *e.Change24h
	case e.Change24hInCurrency != nil:
		snap.Change24h = *e.Change24hInCurrency
	}
	if e.MarketCapRank != nil {
		snap.Rank = *e.MarketCapRank
	}
	if ts, err := time.Parse(time.RFC3339, e.LastUpdated); err == nil {
		snap.LastUpdated = ts.UTC()
	}
	return snap
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
