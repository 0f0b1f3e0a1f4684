package types

import (
	"math"
	"time"
)

// DailySeries holds a symbol's daily close and trend values keyed by
// midnight-UTC date.
type DailySeries struct {
	Close map[time.Time]float64
	Trend map[time.Time]float64
}

func NewDailySeries() DailySeries {
	return DailySeries{
		Close: make(map[time.Time]float64),
		Trend: make(map[time.Time]float64),
	}
}

// At returns the close and trend values for a date, NaN when absent.
func (s DailySeries) At(date time.Time) (float64, float64) {
	day := date.UTC().Truncate(24 * time.Hour)
	c, ok := s.Close[day]
	if !ok {
		c = math.NaN()
	}
	t, ok := s.Trend[day]
	if !ok {
		t = math.NaN()
	}
	return c, t
}
