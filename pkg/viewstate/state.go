// Package viewstate holds the per-owner view state (favorites, selected asset,
// chart range and viewport position) as an explicit object persisted through a
// key-value interface, plus the request-generation token used to discard stale
// responses.
package viewstate

import (
	"strings"
	"time"

	"coinlens-api/pkg/market/chart"
)

const defaultRange = "30d"

// State is the view state owned by one viewer.
type State struct {
	Favorites     []string  `msgpack:"favorites" json:"favorites"`
	SelectedAsset string    `msgpack:"selected_asset" json:"selectedAsset,omitempty"`
	Range         string    `msgpack:"range" json:"range"`
	Index         int       `msgpack:"index" json:"index"`
	UpdatedAt     time.Time `msgpack:"updated_at" json:"updatedAt"`
}

// New returns a state with the default range.
func New() *State {
	return &State{Favorites: []string{}, Range: defaultRange}
}

// IsFavorite reports whether assetID is in the favorites list.
func (s *State) IsFavorite(assetID string) bool {
	for _, id := range s.Favorites {
		if id == assetID {
			return true
		}
	}
	return false
}

// ToggleFavorite adds or removes assetID and reports whether it is now a favorite.
func (s *State) ToggleFavorite(assetID string) bool {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return false
	}
	for i, id := range s.Favorites {
		if id == assetID {
			s.Favorites = append(s.Favorites[:i:i], s.Favorites[i+1:]...)
			return false
		}
	}
	s.Favorites = append(s.Favorites, assetID)
	return true
}

// Select switches the selected asset. A different asset restarts the viewport.
func (s *State) Select(assetID string) {
	assetID = strings.TrimSpace(assetID)
	if assetID == s.SelectedAsset {
		return
	}
	s.SelectedAsset = assetID
	s.Index = 0
}

// Viewport resolves the stored range and index against total candles.
func (s *State) Viewport(total int) chart.Viewport {
	return chart.NewViewport(total, chart.RangeDays(s.rangeLabel()), s.Index)
}

// SetRange changes the range and re-clamps the stored index against total.
func (s *State) SetRange(label string, total int) chart.Viewport {
	s.Range = strings.TrimSpace(label)
	v := s.Viewport(total)
	s.Index = v.Index
	return v
}

// Slide moves the stored viewport one step in dir.
func (s *State) Slide(dir chart.Direction, total int) chart.Viewport {
	v := s.Viewport(total).Slide(dir)
	s.Index = v.Index
	return v
}

func (s *State) rangeLabel() string {
	if s.Range == "" {
		return defaultRange
	}
	return s.Range
}

func (s *State) clone() *State {
	out := *s
	out.Favorites = append([]string{}, s.Favorites...)
	return &out
}
