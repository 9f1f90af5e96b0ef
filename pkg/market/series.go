package market

import (
	"encoding/json"
	"fmt"
	"math"
)

// MarshalJSON encodes a point as the provider's [timestamp, value] pair.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Timestamp), p.Value})
}

// UnmarshalJSON decodes a [timestamp, value] pair.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("point: expected [timestamp, value], got %d elements", len(pair))
	}
	ts, err := pair[0].Float64()
	if err != nil {
		return fmt.Errorf("point: timestamp: %w", err)
	}
	value, err := pair[1].Float64()
	if err != nil {
		return fmt.Errorf("point: value: %w", err)
	}
	p.Timestamp = int64(math.Round(ts))
	p.Value = value
	return nil
}

// Sanitize drops samples whose timestamp does not strictly increase.
func (s *TimeSeries) Sanitize() *TimeSeries {
	if s == nil {
		return nil
	}
	return &TimeSeries{
		Prices:       increasing(s.Prices),
		MarketCaps:   increasing(s.MarketCaps),
		TotalVolumes: increasing(s.TotalVolumes),
	}
}

func increasing(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if n := len(out); n > 0 && p.Timestamp <= out[n-1].Timestamp {
			continue
		}
		out = append(out, p)
	}
	return out
}

// EncodeSeries serialises a series for storage.
func EncodeSeries(s *TimeSeries) ([]byte, error) {
	if s == nil {
		s = &TimeSeries{}
	}
	return json.Marshal(s)
}

// DecodeSeries parses a stored payload. Failures are reported as SerializationError.
func DecodeSeries(key string, payload []byte) (*TimeSeries, error) {
	var s TimeSeries
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, &SerializationError{Key: key, Err: err}
	}
	return &s, nil
}

// EncodeSnapshot serialises a single asset snapshot for storage.
func EncodeSnapshot(snap AssetSnapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// DecodeSnapshot parses a stored snapshot payload.
func DecodeSnapshot(key string, payload []byte) (AssetSnapshot, error) {
	var snap AssetSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return AssetSnapshot{}, &SerializationError{Key: key, Err: err}
	}
	return snap, nil
}
