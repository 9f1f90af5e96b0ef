// Package chart turns raw market series into chart-ready structures: aligned
// multi-asset comparisons, percent-normalized comparisons, daily candles and
// the sliding viewport over them. Every consumer shares these implementations.
package chart

import (
	"math"
	"time"

	"coinlens-api/pkg/market"
)

// LabelLayout formats AlignedPoint labels.
const LabelLayout = "2006-01-02 15:04"

// AlignedPoint carries one value per asset at a reference timestamp. Assets
// without data near the timestamp have no key at all.
type AlignedPoint struct {
	Timestamp int64              `json:"timestamp"`
	Label     string             `json:"date"`
	Values    map[string]float64 `json:"values"`
}

// Column is one asset's ordered samples.
type Column struct {
	AssetID string
	Points  []market.Point
}

// Field selects which sequence of a TimeSeries is projected into aligned points.
type Field int

const (
	FieldPrice Field = iota
	FieldMarketCap
	FieldVolume
)

func (f Field) points(s *market.TimeSeries) []market.Point {
	if s == nil {
		return nil
	}
	switch f {
	case FieldMarketCap:
		return s.MarketCaps
	case FieldVolume:
		return s.TotalVolumes
	default:
		return s.Prices
	}
}

// Nearest returns the value whose timestamp is closest to t. The scan is linear
// and keeps the first match on equal distances.
func Nearest(points []market.Point, t int64) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	best := points[0].Value
	smallest := uint64(math.MaxUint64)
	for _, p := range points {
		if d := absDiff(p.Timestamp, t); d < smallest {
			smallest = d
			best = p.Value
		}
	}
	return best, true
}

func absDiff(a, b int64) uint64 {
	if a > b {
		return uint64(a) - uint64(b)
	}
	return uint64(b) - uint64(a)
}

// ReferenceIndex picks the column with the most samples, first one on ties.
// It returns -1 when every column is empty.
func ReferenceIndex(columns []Column) int {
	ref, most := -1, 0
	for i, col := range columns {
		if len(col.Points) > most {
			ref, most = i, len(col.Points)
		}
	}
	return ref
}

// Align maps every column onto the reference column's timestamps by nearest
// neighbour snapping. All-empty input yields an empty, non-nil result.
func Align(columns []Column) []AlignedPoint {
	ref := ReferenceIndex(columns)
	if ref < 0 {
		return []AlignedPoint{}
	}
	reference := columns[ref].Points
	out := make([]AlignedPoint, 0, len(reference))
	for _, rp := range reference {
		values := make(map[string]float64, len(columns))
		for _, col := range columns {
			if v, ok := Nearest(col.Points, rp.Timestamp); ok {
				values[col.AssetID] = v
			}
		}
		out = append(out, AlignedPoint{
			Timestamp: rp.Timestamp,
			Label:     Label(rp.Timestamp),
			Values:    values,
		})
	}
	return out
}

// AlignSeries aligns the selected field of each asset's series. The reference
// axis is always chosen by price sample count so every field shares one axis.
// Missing or nil series contribute no keys.
func AlignSeries(ids []string, series map[string]*market.TimeSeries, field Field) []AlignedPoint {
	basis := make([]Column, 0, len(ids))
	for _, id := range ids {
		var prices []market.Point
		if s := series[id]; s != nil {
			prices = s.Prices
		}
		basis = append(basis, Column{AssetID: id, Points: prices})
	}
	ref := ReferenceIndex(basis)
	if ref < 0 {
		return []AlignedPoint{}
	}
	if field == FieldPrice {
		return Align(basis)
	}

	out := make([]AlignedPoint, 0, len(basis[ref].Points))
	for _, rp := range basis[ref].Points {
		values := make(map[string]float64, len(ids))
		for _, id := range ids {
			if v, ok := Nearest(field.points(series[id]), rp.Timestamp); ok {
				values[id] = v
			}
		}
		out = append(out, AlignedPoint{Timestamp: rp.Timestamp, Label: Label(rp.Timestamp), Values: values})
	}
	return out
}

// Label renders a millisecond timestamp as a UTC label.
func Label(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(LabelLayout)
}
