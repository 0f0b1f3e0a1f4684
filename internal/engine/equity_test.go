package engine

import (
	"testing"
	"time"

	"meanrev/types"
)

func TestBuildEquityCurve_ResamplesAndFills(t *testing.T) {
	t0 := time.Date(2024, 1, 8, 9, 31, 0, 0, time.UTC)
	history := []types.EquityPoint{
		{Time: t0, Value: 100},
		{Time: t0.Add(5 * time.Minute), Value: 110},
	}

	curve := BuildEquityCurve(history, 100)

	if len(curve) != 6 {
		t.Fatalf("want 6 minutes, got %d", len(curve))
	}
	for i, pt := range curve {
		wantT := t0.Add(time.Duration(i) * time.Minute)
		if !pt.Time.Equal(wantT) {
			t.Errorf("minute %d: got %v want %v", i, pt.Time, wantT)
		}
	}
	wantVals := []float64{100, 100, 100, 100, 100, 110}
	for i, pt := range curve {
		if pt.Value != wantVals[i] {
			t.Errorf("minute %d: got %v want %v", i, pt.Value, wantVals[i])
		}
	}
}

func TestBuildEquityCurve_LastObservationInMinuteWins(t *testing.T) {
	t0 := time.Date(2024, 1, 8, 9, 31, 0, 0, time.UTC)
	history := []types.EquityPoint{
		{Time: t0.Add(10 * time.Second), Value: 100},
		{Time: t0.Add(40 * time.Second), Value: 105},
		{Time: t0.Add(2 * time.Minute), Value: 120},
	}

	curve := BuildEquityCurve(history, 100)

	if len(curve) != 3 {
		t.Fatalf("want 3 minutes, got %d", len(curve))
	}
	wantVals := []float64{105, 105, 120}
	for i, pt := range curve {
		if pt.Value != wantVals[i] {
			t.Errorf("minute %d: got %v want %v", i, pt.Value, wantVals[i])
		}
	}
}

func TestBuildEquityCurve_UnsortedInput(t *testing.T) {
	t0 := time.Date(2024, 1, 8, 9, 31, 0, 0, time.UTC)
	history := []types.EquityPoint{
		{Time: t0.Add(2 * time.Minute), Value: 120},
		{Time: t0, Value: 100},
	}

	curve := BuildEquityCurve(history, 100)

	if len(curve) != 3 {
		t.Fatalf("want 3 minutes, got %d", len(curve))
	}
	if curve[0].Value != 100 || curve[2].Value != 120 {
		t.Errorf("unexpected curve: %+v", curve)
	}
	// 1-minute spacing, strictly increasing
	for i := 1; i < len(curve); i++ {
		if curve[i].Time.Sub(curve[i-1].Time) != time.Minute {
			t.Errorf("gap at %d: %v", i, curve[i].Time.Sub(curve[i-1].Time))
		}
	}
}

func TestBuildEquityCurve_Empty(t *testing.T) {
	if got := BuildEquityCurve(nil, 100); got != nil {
		t.Errorf("want nil for empty history, got %+v", got)
	}
}
