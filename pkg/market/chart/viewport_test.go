package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeDays(t *testing.T) {
	assert.Equal(t, 7, RangeDays("7d"))
	assert.Equal(t, 14, RangeDays("14d"))
	assert.Equal(t, 90, RangeDays("90D"))
	assert.Equal(t, 180, RangeDays("180d"))
	assert.Equal(t, 365, RangeDays("1y"))
	assert.Equal(t, 30, RangeDays("30d"))
	assert.Equal(t, 30, RangeDays("forever"))
	assert.Equal(t, 30, RangeDays(""))
}

func TestViewportClampsWindow(t *testing.T) {
	v := NewViewport(10, 30, 4)
	assert.Equal(t, 10, v.Window)
	assert.Equal(t, 0, v.MaxIndex())
	assert.Equal(t, 0, v.Index)

	v = NewViewport(100, 30, 500)
	assert.Equal(t, 70, v.MaxIndex())
	assert.Equal(t, 70, v.Index)
}

func TestViewportSlide(t *testing.T) {
	v := NewViewport(100, 30, 0)
	assert.Equal(t, 6, v.Step())

	v = v.Slide(Left)
	assert.Equal(t, 6, v.Index)
	v = v.Slide(Right).Slide(Right)
	assert.Equal(t, 0, v.Index)

	small := NewViewport(100, 7, 0)
	assert.Equal(t, 1, small.Step())

	atMax := NewViewport(100, 30, 70)
	atMax = atMax.Slide(Left)
	assert.Equal(t, atMax.MaxIndex(), atMax.Index)
	assert.LessOrEqual(t, atMax.Index, atMax.Total-atMax.Window)

	nearMax := NewViewport(100, 30, 67).Slide(Left)
	assert.Equal(t, 70, nearMax.Index)
}

func TestViewportResizeReclampsIndex(t *testing.T) {
	v := NewViewport(365, 30, 200)
	v = v.Resize(180)
	assert.Equal(t, 180, v.Window)
	assert.Equal(t, 185, v.MaxIndex())
	assert.Equal(t, 185, v.Index)

	v = v.Resize(7)
	assert.Equal(t, 185, v.Index)
}

func TestViewportVisible(t *testing.T) {
	candles := make([]Candle, 20)
	for i := range candles {
		candles[i].Close = float64(i)
	}
	v := NewViewport(len(candles), 7, 5)
	start, end := v.Bounds()
	assert.Equal(t, 5, start)
	assert.Equal(t, 12, end)
	visible := v.Visible(candles)
	assert.Len(t, visible, 7)
	assert.Equal(t, 5.0, visible[0].Close)

	assert.Empty(t, NewViewport(0, 30, 3).Visible(nil))
}
