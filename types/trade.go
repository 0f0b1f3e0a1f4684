package types

import (
	"time"
)

// TradeRecord is one closed round trip. Records are append-only: the
// portfolio writes one exactly when a position closes and never mutates it.
type TradeRecord struct {
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	EntryTime  time.Time `json:"entryTime"`
	ExitTime   time.Time `json:"exitTime"`
	Shares     int       `json:"shares"`
	PnL        float64   `json:"pnl"`
	PnLPct     float64   `json:"pnlPct"`
	ZScore     float64   `json:"zScore"`
}
