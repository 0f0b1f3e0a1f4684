package types

import (
	"time"
)

// EquityPoint is one valuation of the whole portfolio at a point in time.
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
