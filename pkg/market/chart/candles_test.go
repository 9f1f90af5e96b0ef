package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinlens-api/pkg/market"
)

func hourly(start time.Time, prices []float64) ([]market.Point, []market.Point) {
	p := make([]market.Point, len(prices))
	v := make([]market.Point, len(prices))
	for i, price := range prices {
		ts := start.Add(time.Duration(i) * time.Hour).UnixMilli()
		p[i] = market.Point{Timestamp: ts, Value: price}
		v[i] = market.Point{Timestamp: ts, Value: 1}
	}
	return p, v
}

func TestDailyCandlesTwoDates(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	values := make([]float64, 25)
	for i := range values {
		values[i] = 100 + float64((i*7)%13)
	}
	prices, volumes := hourly(start, values)

	candles := DailyCandles(prices, volumes)
	require.Len(t, candles, 2)
	for _, c := range candles {
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Open, c.High)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.LessOrEqual(t, c.Close, c.High)
	}

	first := candles[0]
	assert.Equal(t, "2024-03-01", first.Date)
	assert.Equal(t, start.UnixMilli(), first.Timestamp)
	assert.Equal(t, values[0], first.Open)
	assert.Equal(t, values[23], first.Close)
	assert.Equal(t, 24.0, first.Volume)

	second := candles[1]
	assert.Equal(t, "2024-03-02", second.Date)
	assert.Equal(t, values[24], second.Open)
	assert.Equal(t, values[24], second.Close)
	assert.Equal(t, 1.0, second.Volume)
}

func TestDailyCandlesOHLC(t *testing.T) {
	start := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	prices, volumes := hourly(start, []float64{10, 14, 8, 12})
	volumes[1].Value = 2.5

	candles := DailyCandles(prices, volumes)
	require.Len(t, candles, 1)
	c := candles[0]
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC).UnixMilli(), c.Timestamp)
	assert.Equal(t, 10.0, c.Open)
	assert.Equal(t, 14.0, c.High)
	assert.Equal(t, 8.0, c.Low)
	assert.Equal(t, 12.0, c.Close)
	assert.Equal(t, 5.5, c.Volume)
}

func TestDailyCandlesMissingVolumes(t *testing.T) {
	start := time.Date(2024, 1, 5, 22, 0, 0, 0, time.UTC)
	prices, volumes := hourly(start, []float64{1, 2, 3})

	candles := DailyCandles(prices, volumes[:1])
	require.Len(t, candles, 2)
	assert.Equal(t, 1.0, candles[0].Volume)
	assert.Equal(t, 0.0, candles[1].Volume)
	assert.Equal(t, []float64{2, 3}, Closes(candles))
}

func TestDailyCandlesEmpty(t *testing.T) {
	candles := DailyCandles(nil, nil)
	require.NotNil(t, candles)
	assert.Empty(t, candles)
}
