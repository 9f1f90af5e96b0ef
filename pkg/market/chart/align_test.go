package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinlens-api/pkg/market"
)

func pts(pairs ...float64) []market.Point {
	out := make([]market.Point, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, market.Point{Timestamp: int64(pairs[i]), Value: pairs[i+1]})
	}
	return out
}

func TestNearest(t *testing.T) {
	points := pts(0, 10, 10, 20, 20, 30)

	tests := []struct {
		name string
		t    int64
		want float64
	}{
		{name: "closer to later sample", t: 14, want: 20},
		{name: "closer to earlier sample", t: 4, want: 10},
		{name: "equidistant keeps first scanned", t: 5, want: 10},
		{name: "exact hit", t: 20, want: 30},
		{name: "before range", t: -100, want: 10},
		{name: "after range", t: 1000, want: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Nearest(points, tt.t)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Nearest(nil, 5)
	assert.False(t, ok)
}

func TestReferenceIndex(t *testing.T) {
	cols := []Column{
		{AssetID: "a", Points: pts(0, 1, 1, 2)},
		{AssetID: "b", Points: pts(0, 1, 1, 2, 2, 3)},
		{AssetID: "c", Points: pts(0, 1, 1, 2, 2, 3)},
	}
	assert.Equal(t, 1, ReferenceIndex(cols))
	assert.Equal(t, -1, ReferenceIndex([]Column{{AssetID: "a"}, {AssetID: "b"}}))
	assert.Equal(t, -1, ReferenceIndex(nil))
}

func TestAlignAgainstItself(t *testing.T) {
	series := pts(1000, 1.5, 2000, 2.5, 3000, 3.5, 4000, 4.5)
	aligned := Align([]Column{{AssetID: "x", Points: series}, {AssetID: "y", Points: series}})
	require.Len(t, aligned, len(series))
	for i, p := range aligned {
		assert.Equal(t, series[i].Timestamp, p.Timestamp)
		assert.Equal(t, series[i].Value, p.Values["x"])
		assert.Equal(t, series[i].Value, p.Values["y"])
	}
}

func TestAlignSnapsToReferenceAxis(t *testing.T) {
	btc := pts(0, 100, 3600, 110, 7200, 120, 10800, 130)
	eth := pts(100, 10, 7300, 12)
	aligned := Align([]Column{{AssetID: "ethereum", Points: eth}, {AssetID: "bitcoin", Points: btc}})

	require.Len(t, aligned, 4)
	assert.Equal(t, int64(0), aligned[0].Timestamp)
	assert.Equal(t, 10.0, aligned[0].Values["ethereum"])
	assert.Equal(t, 10.0, aligned[1].Values["ethereum"])
	assert.Equal(t, 12.0, aligned[2].Values["ethereum"])
	assert.Equal(t, 12.0, aligned[3].Values["ethereum"])
	assert.Equal(t, 130.0, aligned[3].Values["bitcoin"])
	assert.Equal(t, "1970-01-01 00:00", aligned[0].Label)
}

func TestAlignOmitsEmptyColumns(t *testing.T) {
	series := map[string]*market.TimeSeries{
		"bitcoin":  {Prices: pts(0, 100, 10, 101, 20, 102)},
		"ethereum": {},
	}
	aligned := AlignSeries([]string{"bitcoin", "ethereum"}, series, FieldPrice)
	require.Len(t, aligned, 3)
	for _, p := range aligned {
		assert.Contains(t, p.Values, "bitcoin")
		assert.NotContains(t, p.Values, "ethereum")
	}
}

func TestAlignAllEmpty(t *testing.T) {
	aligned := Align([]Column{{AssetID: "a"}, {AssetID: "b"}})
	require.NotNil(t, aligned)
	assert.Empty(t, aligned)

	aligned = AlignSeries([]string{"a", "b"}, map[string]*market.TimeSeries{"a": nil}, FieldVolume)
	require.NotNil(t, aligned)
	assert.Empty(t, aligned)
}

func TestAlignSeriesUsesPriceAxisForOtherFields(t *testing.T) {
	series := map[string]*market.TimeSeries{
		"a": {
			Prices:       pts(0, 1, 10, 2, 20, 3),
			TotalVolumes: pts(0, 100),
		},
		"b": {
			Prices:     pts(0, 5),
			MarketCaps: pts(0, 500, 10, 600, 20, 700, 30, 800),
		},
	}
	volumes := AlignSeries([]string{"a", "b"}, series, FieldVolume)
	require.Len(t, volumes, 3)
	for _, p := range volumes {
		assert.Equal(t, 100.0, p.Values["a"])
		assert.NotContains(t, p.Values, "b")
	}

	caps := AlignSeries([]string{"a", "b"}, series, FieldMarketCap)
	require.Len(t, caps, 3)
	assert.Equal(t, []float64{500, 600, 700}, []float64{caps[0].Values["b"], caps[1].Values["b"], caps[2].Values["b"]})
}
