package types

import (
	"time"

	"coinlens-api/pkg/market"
	"coinlens-api/pkg/market/chart"
	"coinlens-api/pkg/market/indicators"
	"coinlens-api/pkg/viewstate"
)

type CryptoRequest struct {
	Limit int `form:"limit,default=10"`
}

type CryptoResponse struct {
	Source  string                 `json:"source"`
	Cause   string                 `json:"cause,omitempty"`
	Data    []market.AssetSnapshot `json:"data"`
	Summary market.Summary         `json:"summary"`
}

type SummaryResponse struct {
	Source      string         `json:"source"`
	RefreshedAt time.Time      `json:"refreshedAt"`
	Summary     market.Summary `json:"summary"`
}

type HistoricalRequest struct {
	CoinID   string `form:"coinId,optional"`
	Days     int    `form:"days,default=7"`
	Interval string `form:"interval,optional"`
}

type HistoricalResponse struct {
	CoinID string             `json:"coinId"`
	Days   int                `json:"days"`
	Source string             `json:"source"`
	Cause  string             `json:"cause,omitempty"`
	Data   *market.TimeSeries `json:"data"`
}

type ComparisonRequest struct {
	Coins string `form:"coins,optional"`
	Days  int    `form:"days,default=7"`
	Field string `form:"field,default=price,options=price|market_cap|volume"`
}

type ComparisonResponse struct {
	Coins      []string                      `json:"coins"`
	Days       int                           `json:"days"`
	Series     map[string]*market.TimeSeries `json:"series"`
	Sources    map[string]string             `json:"sources"`
	Aligned    []chart.AlignedPoint          `json:"aligned"`
	Normalized []chart.AlignedPoint          `json:"normalized"`
}

type CandlesRequest struct {
	CoinID    string `form:"coinId,optional"`
	Days      int    `form:"days,default=30"`
	Range     string `form:"range,optional"`
	Index     int    `form:"index,optional"`
	Direction string `form:"direction,optional"`
	Owner     string `form:"owner,optional"`
}

type CandlesResponse struct {
	CoinID   string             `json:"coinId"`
	Range    string             `json:"range"`
	Source   string             `json:"source"`
	Viewport chart.Viewport     `json:"viewport"`
	Candles  []chart.Candle     `json:"candles"`
	Overlay  indicators.Overlay `json:"overlay"`
}

type ViewStateRequest struct {
	Owner string `form:"owner,optional"`
}

type FavoriteRequest struct {
	Owner  string `json:"owner,optional"`
	CoinID string `json:"coinId"`
}

type SelectRequest struct {
	Owner  string `json:"owner,optional"`
	CoinID string `json:"coinId"`
	Range  string `json:"range,optional"`
}

type ViewStateResponse struct {
	Owner string           `json:"owner"`
	State *viewstate.State `json:"state"`
}
