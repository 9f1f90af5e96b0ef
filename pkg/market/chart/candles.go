package chart

import (
	"sort"
	"time"

	"coinlens-api/pkg/market"
)

const dateLayout = "2006-01-02"

// Candle is one UTC calendar day of open/high/low/close/volume.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // Bucket start (UTC midnight), ms
	Date      string  `json:"date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// DailyCandles buckets time-ordered sub-daily samples into one candle per UTC
// date. volumes is index-aligned with prices; a missing volume counts as zero.
// Input is assumed ordered; samples are never re-sorted within a bucket.
func DailyCandles(prices, volumes []market.Point) []Candle {
	if len(prices) == 0 {
		return []Candle{}
	}
	index := make(map[string]int)
	candles := make([]Candle, 0, len(prices)/24+1)
	for i, p := range prices {
		ts := p.Time()
		key := ts.Format(dateLayout)
		var volume float64
		if i < len(volumes) {
			volume = volumes[i].Value
		}
		pos, ok := index[key]
		if !ok {
			start := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			index[key] = len(candles)
			candles = append(candles, Candle{
				Timestamp: start.UnixMilli(),
				Date:      key,
				Open:      p.Value,
				High:      p.Value,
				Low:       p.Value,
				Close:     p.Value,
				Volume:    volume,
			})
			continue
		}
		c := &candles[pos]
		if p.Value > c.High {
			c.High = p.Value
		}
		if p.Value < c.Low {
			c.Low = p.Value
		}
		c.Close = p.Value
		c.Volume += volume
	}
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp < candles[j].Timestamp
	})
	return candles
}

// Closes extracts close prices in candle order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
