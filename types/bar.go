package types

import (
	"time"
)

// Bar is a single minute bar together with the intraday indicator columns
// the strategy consumes. Indicator fields are NaN until computed.
type Bar struct {
	Timestamp  time.Time `json:"timestamp"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     float64   `json:"volume"`
	Z          float64   `json:"z"`
	Vol15      float64   `json:"vol15"`
	Volatility float64   `json:"volatility"`
	ATR        float64   `json:"atr"`
}
