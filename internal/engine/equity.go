package engine

import (
	"sort"
	"time"

	"meanrev/types"
)

// BuildEquityCurve resamples the irregular valuation history onto a fixed
// 1-minute grid with last-observation carry-forward. Minutes before the
// first observation are filled with the initial capital.
func BuildEquityCurve(history []types.EquityPoint, initialCapital float64) []types.EquityPoint {
	if len(history) == 0 {
		return nil
	}

	points := append([]types.EquityPoint(nil), history...)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	first := points[0].Time.Truncate(time.Minute)
	last := points[len(points)-1].Time.Truncate(time.Minute)

	var curve []types.EquityPoint
	value := initialCapital
	next := 0
	for t := first; !t.After(last); t = t.Add(time.Minute) {
		// take the last observation within this minute
		for next < len(points) && points[next].Time.Before(t.Add(time.Minute)) {
			value = points[next].Value
			next++
		}
		curve = append(curve, types.EquityPoint{Time: t, Value: value})
	}
	return curve
}
