// Package indicators computes illustrative chart overlays over close prices.
// Values are for display only and make no claim of trading-grade accuracy.
package indicators

import "math"

const (
	// DefaultSMAPeriod is the moving average overlay drawn on candle charts.
	DefaultSMAPeriod = 20
	// DefaultRSIPeriod is the oscillator window drawn under candle charts.
	DefaultRSIPeriod = 14
	// DefaultTrendPeriod is the long moving average compared with the last close.
	DefaultTrendPeriod = 50

	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9

	// Bollinger bands sit BollingerWidth standard deviations around the SMA20.
	BollingerWidth = 2.0

	overbought = 70.0
	oversold   = 30.0

	// Bounds on %B, the close's position between the lower and upper band.
	bandHigh = 0.8
	bandLow  = 0.2
)

// Signal is the coarse reading attached to an oscillator value.
type Signal string

const (
	SignalBuy     Signal = "buy"
	SignalSell    Signal = "sell"
	SignalNeutral Signal = "neutral"
)

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA is the simple moving average. Positions before the first full window are NaN.
func SMA(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) == 0 {
		return []float64{}
	}
	result := nanSeries(len(closes))
	var sum float64
	for i, v := range closes {
		sum += v
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			result[i] = sum / float64(period)
		}
	}
	return result
}

// EMA is the exponential moving average seeded with the first full-window SMA.
// NaN inputs carry the previous average forward.
func EMA(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) == 0 {
		return []float64{}
	}
	result := nanSeries(len(closes))
	if len(closes) < period {
		return result
	}
	k := 2.0 / float64(period+1)

	seedAt := -1
	var seed float64
	for end := period - 1; end < len(closes) && seedAt < 0; end++ {
		sum, ok := 0.0, true
		for _, v := range closes[end-period+1 : end+1] {
			if math.IsNaN(v) {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			seedAt, seed = end, sum/float64(period)
		}
	}
	if seedAt < 0 {
		return result
	}
	result[seedAt] = seed
	for i := seedAt + 1; i < len(closes); i++ {
		prev := result[i-1]
		if math.IsNaN(closes[i]) {
			result[i] = prev
			continue
		}
		result[i] = prev + (closes[i]-prev)*k
	}
	return result
}

// RSI is the Wilder-smoothed relative strength index. The first period
// positions are NaN.
func RSI(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) == 0 {
		return []float64{}
	}
	result := nanSeries(len(closes))
	if len(closes) <= period {
		return result
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	result[period] = strength(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		result[i] = strength(avgGain, avgLoss)
	}
	return result
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func strength(avgGain, avgLoss float64) float64 {
	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50
	case avgLoss == 0:
		return 100
	case avgGain == 0:
		return 0
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// RSISignal classifies an RSI reading: above 70 sells, below 30 buys.
func RSISignal(value float64) Signal {
	switch {
	case math.IsNaN(value):
		return SignalNeutral
	case value > overbought:
		return SignalSell
	case value < oversold:
		return SignalBuy
	}
	return SignalNeutral
}

// MACD returns the line (fast EMA minus slow EMA), its signal EMA and the
// histogram between them.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	if len(closes) == 0 || fast <= 0 || slow <= 0 || signal <= 0 {
		return []float64{}, []float64{}, []float64{}
	}
	fastEMA, slowEMA := EMA(closes, fast), EMA(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig = EMA(line, signal)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// MACDCross classifies the latest MACD reading: above its signal line buys,
// below sells.
func MACDCross(line, sig float64) Signal {
	switch {
	case math.IsNaN(line) || math.IsNaN(sig):
		return SignalNeutral
	case line > sig:
		return SignalBuy
	case line < sig:
		return SignalSell
	}
	return SignalNeutral
}

// Bollinger returns the upper and lower bands at width population standard
// deviations around the period SMA.
func Bollinger(closes []float64, period int, width float64) (upper, lower []float64) {
	mid := SMA(closes, period)
	upper, lower = nanSeries(len(mid)), nanSeries(len(mid))
	for i := range mid {
		if math.IsNaN(mid[i]) {
			continue
		}
		var sq float64
		for _, v := range closes[i-period+1 : i+1] {
			sq += (v - mid[i]) * (v - mid[i])
		}
		dev := width * math.Sqrt(sq/float64(period))
		upper[i], lower[i] = mid[i]+dev, mid[i]-dev
	}
	return upper, lower
}

// PercentB places price between the bands: 0 at the lower band, 1 at the
// upper. Collapsed bands read 0.5.
func PercentB(price, upper, lower float64) float64 {
	if math.IsNaN(upper) || math.IsNaN(lower) {
		return math.NaN()
	}
	if upper == lower {
		return 0.5
	}
	return (price - lower) / (upper - lower)
}

// BandSignal classifies %B: above 0.8 sells, below 0.2 buys.
func BandSignal(percentB float64) Signal {
	switch {
	case math.IsNaN(percentB):
		return SignalNeutral
	case percentB > bandHigh:
		return SignalSell
	case percentB < bandLow:
		return SignalBuy
	}
	return SignalNeutral
}

// TrendSignal compares the last close with a moving average: a close below the
// average sells, otherwise buys.
func TrendSignal(price, average float64) Signal {
	switch {
	case math.IsNaN(price) || math.IsNaN(average):
		return SignalNeutral
	case average > price:
		return SignalSell
	}
	return SignalBuy
}

// Reading is the latest value of one indicator and its signal.
type Reading struct {
	Name   string   `json:"name"`
	Value  *float64 `json:"value"`
	Signal Signal   `json:"signal"`
}

// LevelKind tells support from resistance.
type LevelKind string

const (
	Support    LevelKind = "support"
	Resistance LevelKind = "resistance"
)

// Level is a price band around the last close.
type Level struct {
	Name  string    `json:"name"`
	Price float64   `json:"price"`
	Kind  LevelKind `json:"kind"`
}

// Levels returns supports at 90% and 80% and resistances at 110% and 120% of price.
func Levels(price float64) []Level {
	if math.IsNaN(price) || price <= 0 {
		return []Level{}
	}
	return []Level{
		{Name: "Support 1", Price: price * 0.9, Kind: Support},
		{Name: "Support 2", Price: price * 0.8, Kind: Support},
		{Name: "Resistance 1", Price: price * 1.1, Kind: Resistance},
		{Name: "Resistance 2", Price: price * 1.2, Kind: Resistance},
	}
}

// Consensus is buy or sell only when that signal outnumbers both others.
func Consensus(readings []Reading) Signal {
	counts := map[Signal]int{}
	for _, r := range readings {
		counts[r.Signal]++
	}
	buy, sell, neutral := counts[SignalBuy], counts[SignalSell], counts[SignalNeutral]
	switch {
	case buy > sell && buy > neutral:
		return SignalBuy
	case sell > buy && sell > neutral:
		return SignalSell
	}
	return SignalNeutral
}

// Overlay bundles the default overlays for one close series. NaN positions are
// reported as nil so the result encodes cleanly to JSON. Signal is the RSI
// reading; Overall is the consensus over Readings.
type Overlay struct {
	SMA            []*float64 `json:"sma20"`
	MA50           []*float64 `json:"ma50"`
	RSI            []*float64 `json:"rsi14"`
	MACD           []*float64 `json:"macd"`
	MACDSignal     []*float64 `json:"macdSignal"`
	MACDHistogram  []*float64 `json:"macdHistogram"`
	BollingerUpper []*float64 `json:"bollingerUpper"`
	BollingerLower []*float64 `json:"bollingerLower"`

	LatestRSI *float64  `json:"latestRsi,omitempty"`
	Signal    Signal    `json:"signal"`
	Readings  []Reading `json:"readings"`
	Overall   Signal    `json:"overallSignal"`
	Levels    []Level   `json:"levels"`
}

// Compute builds the default overlay set.
func Compute(closes []float64) Overlay {
	sma := SMA(closes, DefaultSMAPeriod)
	ma50 := SMA(closes, DefaultTrendPeriod)
	rsi := RSI(closes, DefaultRSIPeriod)
	line, sig, hist := MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	upper, lower := Bollinger(closes, DefaultSMAPeriod, BollingerWidth)

	overlay := Overlay{
		SMA:            nullable(sma),
		MA50:           nullable(ma50),
		RSI:            nullable(rsi),
		MACD:           nullable(line),
		MACDSignal:     nullable(sig),
		MACDHistogram:  nullable(hist),
		BollingerUpper: nullable(upper),
		BollingerLower: nullable(lower),
		Signal:         SignalNeutral,
		Overall:        SignalNeutral,
		Readings:       []Reading{},
		Levels:         []Level{},
	}
	n := len(closes)
	if n == 0 {
		return overlay
	}
	last := closes[n-1]
	if !math.IsNaN(rsi[n-1]) {
		latest := rsi[n-1]
		overlay.LatestRSI = &latest
		overlay.Signal = RSISignal(latest)
	}
	percentB := PercentB(last, upper[n-1], lower[n-1])
	overlay.Readings = []Reading{
		{Name: "RSI (14)", Value: overlay.LatestRSI, Signal: overlay.Signal},
		{Name: "MACD", Value: overlay.MACD[n-1], Signal: MACDCross(line[n-1], sig[n-1])},
		{Name: "Bollinger Bands", Value: nullable([]float64{percentB})[0], Signal: BandSignal(percentB)},
		{Name: "MA (50)", Value: overlay.MA50[n-1], Signal: TrendSignal(last, ma50[n-1])},
	}
	overlay.Overall = Consensus(overlay.Readings)
	overlay.Levels = Levels(last)
	return overlay
}

// Window returns the per-candle series restricted to [start, end). Readings,
// levels and signals still describe the full series.
func (o Overlay) Window(start, end int) Overlay {
	out := o
	out.SMA = window(o.SMA, start, end)
	out.MA50 = window(o.MA50, start, end)
	out.RSI = window(o.RSI, start, end)
	out.MACD = window(o.MACD, start, end)
	out.MACDSignal = window(o.MACDSignal, start, end)
	out.MACDHistogram = window(o.MACDHistogram, start, end)
	out.BollingerUpper = window(o.BollingerUpper, start, end)
	out.BollingerLower = window(o.BollingerLower, start, end)
	return out
}

func window(values []*float64, start, end int) []*float64 {
	if end > len(values) {
		end = len(values)
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return values[start:end]
}

func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}
