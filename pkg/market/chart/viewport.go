package chart

import "strings"

// Direction is a viewport slide direction. Left advances the window start
// towards the end of the candle array; Right moves it back towards zero.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

const defaultRangeDays = 30

var rangeDays = map[string]int{
	"7d":   7,
	"14d":  14,
	"30d":  30,
	"90d":  90,
	"180d": 180,
	"1y":   365,
}

// RangeDays maps a range label to its bucket count. Unknown labels map to 30.
func RangeDays(label string) int {
	if days, ok := rangeDays[strings.ToLower(strings.TrimSpace(label))]; ok {
		return days
	}
	return defaultRangeDays
}

// Viewport is a visible window over a fixed-length candle array.
type Viewport struct {
	Total  int `json:"total"`
	Window int `json:"window"`
	Index  int `json:"index"`
}

// NewViewport clamps the window to total and the index to [0, MaxIndex].
func NewViewport(total, windowLength, index int) Viewport {
	if total < 0 {
		total = 0
	}
	if windowLength <= 0 {
		windowLength = defaultRangeDays
	}
	if windowLength > total {
		windowLength = total
	}
	v := Viewport{Total: total, Window: windowLength}
	v.Index = v.clamp(index)
	return v
}

// MaxIndex is the largest valid window start.
func (v Viewport) MaxIndex() int {
	if m := v.Total - v.Window; m > 0 {
		return m
	}
	return 0
}

// Step is the slide distance: a fifth of the window, at least one.
func (v Viewport) Step() int {
	if s := v.Window / 5; s > 1 {
		return s
	}
	return 1
}

// Slide moves the index one step in dir, clamped to the valid range.
func (v Viewport) Slide(dir Direction) Viewport {
	switch dir {
	case Left:
		v.Index = v.clamp(v.Index + v.Step())
	case Right:
		v.Index = v.clamp(v.Index - v.Step())
	}
	return v
}

// Resize changes the window length and re-clamps the current index.
func (v Viewport) Resize(windowLength int) Viewport {
	return NewViewport(v.Total, windowLength, v.Index)
}

// Bounds returns the half-open [start, end) range of visible candles.
func (v Viewport) Bounds() (int, int) {
	return v.Index, v.Index + v.Window
}

// Visible slices candles to the viewport.
func (v Viewport) Visible(candles []Candle) []Candle {
	start, end := v.Bounds()
	if start > len(candles) {
		start = len(candles)
	}
	if end > len(candles) {
		end = len(candles)
	}
	return candles[start:end]
}

func (v Viewport) clamp(index int) int {
	if index < 0 {
		return 0
	}
	if max := v.MaxIndex(); index > max {
		return max
	}
	return index
}
