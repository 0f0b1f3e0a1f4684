// Package indicators computes the daily and intraday series the strategy
// reads. All outputs are float64 with NaN for warm-up or missing values.
package indicators

import (
	"math"
	"sort"

	"meanrev/types"
)

// SMA returns the simple moving average series over window n; the first
// n-1 entries are NaN.
func SMA(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= n {
			sum -= vals[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// RollingStd returns the sample standard deviation over window n.
func RollingStd(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	if n <= 1 {
		return out
	}
	for i := n - 1; i < len(vals); i++ {
		window := vals[i-n+1 : i+1]
		m := mean(window)
		var s float64
		for _, v := range window {
			d := v - m
			s += d * d
		}
		out[i] = math.Sqrt(s / float64(n-1))
	}
	return out
}

// DailyTrend computes the trend series (SMA of daily closes) used by the
// entry trend filter.
func DailyTrend(closes []float64, window int) []float64 {
	return SMA(closes, window)
}

// Median returns the median of the non-NaN values in vals; NaN when none
// remain.
func Median(vals []float64) float64 {
	sorted := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// trueRange follows the usual max(high-low, |high-prevClose|, |low-prevClose|)
// definition; the first bar uses high-low.
func trueRange(bar types.Bar, prevClose float64) float64 {
	tr := bar.High - bar.Low
	if !math.IsNaN(prevClose) {
		tr = math.Max(tr, math.Abs(bar.High-prevClose))
		tr = math.Max(tr, math.Abs(bar.Low-prevClose))
	}
	return tr
}

// EnrichIntraday fills the indicator columns of a day's minute bars:
// z-score of close against its rolling mean/std (std floored), rolling
// volume mean, rolling return volatility, and ATR. The input slice is not
// modified.
func EnrichIntraday(bars []types.Bar, lookback, atrWindow int, stdFloor float64) []types.Bar {
	out := append([]types.Bar(nil), bars...)
	n := len(out)
	if n == 0 {
		return out
	}

	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range out {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	meanClose := SMA(closes, lookback)
	stdClose := RollingStd(closes, lookback)
	volMean := SMA(volumes, lookback)

	// one-bar returns, then their rolling std
	returns := nanSlice(n)
	for i := 1; i < n; i++ {
		if closes[i-1] != 0 {
			returns[i] = closes[i]/closes[i-1] - 1
		}
	}
	retStd := RollingStd(returns, lookback)

	// rolling mean of true range
	trs := make([]float64, n)
	prevClose := math.NaN()
	for i, b := range out {
		trs[i] = trueRange(b, prevClose)
		prevClose = b.Close
	}
	atr := SMA(trs, atrWindow)

	for i := range out {
		std := stdClose[i]
		if !math.IsNaN(std) && std < stdFloor {
			std = stdFloor
		}
		if math.IsNaN(meanClose[i]) || math.IsNaN(std) {
			out[i].Z = math.NaN()
		} else {
			out[i].Z = (closes[i] - meanClose[i]) / std
		}
		out[i].Vol15 = volMean[i]
		out[i].Volatility = retStd[i]
		out[i].ATR = atr[i]
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
