package engine

import (
	"math"
	"time"

	"meanrev/internal/config"
	"meanrev/types"
)

// entryCandidate is the output of a passing signal evaluation: everything
// the sizer needs to turn the signal into a share count.
type entryCandidate struct {
	ExecPrice  float64
	Z          float64
	Volatility float64
	ATR        float64
}

// rejectReason says which entry gate failed. The gates run in a fixed
// order and the first failure wins.
type rejectReason int

const (
	rejectNone rejectReason = iota
	rejectZ
	rejectVolume
	rejectTrend
	rejectConfirm
)

// evaluateEntry decides entry eligibility for one symbol at bar i. It is a
// pure function of the day's bars, the daily series, and the parameters;
// it never touches portfolio state.
//
// Gate order: z-score, volume confirmation, daily trend filter, then
// confirmation bars.
func evaluateEntry(
	bars []types.Bar,
	i int,
	daily types.DailySeries,
	date time.Time,
	medianVolume float64,
	execPrice float64,
	p *config.Params,
) (entryCandidate, rejectReason) {
	z := bars[i].Z
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return entryCandidate{}, rejectZ
	}
	if z > -p.ZThreshold {
		return entryCandidate{}, rejectZ
	}

	vol15 := bars[i].Vol15
	if math.IsNaN(vol15) {
		vol15 = 0
	}
	if !(medianVolume > 0 && vol15 >= medianVolume*p.VolumeMinFactor) {
		return entryCandidate{}, rejectVolume
	}

	todayClose, trend := daily.At(date)
	if math.IsNaN(todayClose) || math.IsNaN(trend) || todayClose <= trend {
		return entryCandidate{}, rejectTrend
	}

	if p.ConfirmBars > 0 {
		for j := 0; j < p.ConfirmBars; j++ {
			idx := i - j
			if idx < 0 || idx >= len(bars) {
				return entryCandidate{}, rejectConfirm
			}
			zj := bars[idx].Z
			if math.IsNaN(zj) || math.IsInf(zj, 0) || zj > -p.ZThreshold {
				return entryCandidate{}, rejectConfirm
			}
		}
	}

	return entryCandidate{
		ExecPrice:  execPrice,
		Z:          z,
		Volatility: floorValue(bars[i].Volatility, p.VolFloor),
		ATR:        floorValue(bars[i].ATR, p.ATRFloor),
	}, rejectNone
}

// floorValue replaces a missing, non-finite, or non-positive indicator
// value with its floor constant.
func floorValue(v, floor float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return floor
	}
	return v
}
