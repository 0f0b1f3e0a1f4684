package engine

import (
	"math"
	"time"

	"meanrev/types"
)

// entryPriceEpsilon guards the pnl percentage against a zero entry price.
const entryPriceEpsilon = 1e-8

// Position is one symbol's holding. Shares == 0 means flat, and a flat
// position always has a zero entry price, zero entry time, and NaN z.
type Position struct {
	Shares     int
	EntryPrice float64
	EntryTime  time.Time
	Z          float64
}

func flatPosition() *Position {
	return &Position{Z: math.NaN()}
}

// Diagnostics counts every decision outcome of a run. Counters only ever
// increment; they are never reset mid-run.
type Diagnostics struct {
	Entries       int
	IntradayExits int
	EODCloses     int
	ZFail         int
	VolFail       int
	TrendFail     int
	ConfirmFail   int
	SizeFail      int
	CashFail      int
	PriceFail     int
	MissingData   int
}

// Counts returns the counters keyed by their reporting names.
func (d Diagnostics) Counts() map[string]int {
	return map[string]int{
		"entries":        d.Entries,
		"intraday_exits": d.IntradayExits,
		"eod_closes":     d.EODCloses,
		"z_fail":         d.ZFail,
		"vol_fail":       d.VolFail,
		"trend_fail":     d.TrendFail,
		"confirm_fail":   d.ConfirmFail,
		"size_fail":      d.SizeFail,
		"cash_fail":      d.CashFail,
		"price_fail":     d.PriceFail,
		"missing_data":   d.MissingData,
	}
}

// CounterNames is the reporting order of the diagnostics counters.
var CounterNames = []string{
	"entries", "intraday_exits", "eod_closes",
	"z_fail", "vol_fail", "trend_fail", "confirm_fail",
	"size_fail", "cash_fail", "price_fail", "missing_data",
}

// portfolio is the single owner of cash, positions, the trade log, the
// valuation history, and the diagnostics counters. All mutation goes
// through its methods in one sequential pass.
type portfolio struct {
	cash      float64
	positions map[string]*Position
	trades    []types.TradeRecord
	history   []types.EquityPoint
	diag      Diagnostics
}

func newPortfolio(symbols []string, initialCash float64) *portfolio {
	positions := make(map[string]*Position, len(symbols))
	for _, sym := range symbols {
		positions[sym] = flatPosition()
	}
	return &portfolio{
		cash:      initialCash,
		positions: positions,
	}
}

// totalValue marks every open position at its fill price, falling back to
// the entry price when the symbol has no fill price this bar.
func (p *portfolio) totalValue(fillPrices map[string]float64) float64 {
	value := p.cash
	for sym, pos := range p.positions {
		if pos.Shares == 0 {
			continue
		}
		value += float64(pos.Shares) * p.markPrice(sym, fillPrices)
	}
	return value
}

// grossExposure sums the absolute dollar value of all open positions.
func (p *portfolio) grossExposure(fillPrices map[string]float64) float64 {
	exposure := 0.0
	for sym, pos := range p.positions {
		if pos.Shares == 0 {
			continue
		}
		exposure += math.Abs(float64(pos.Shares)) * p.markPrice(sym, fillPrices)
	}
	return exposure
}

func (p *portfolio) markPrice(sym string, fillPrices map[string]float64) float64 {
	if price, ok := fillPrices[sym]; ok {
		return price
	}
	return p.positions[sym].EntryPrice
}

// pnlPct is the unrealized return of a position at the given price.
func pnlPct(entryPrice, price float64) float64 {
	denom := entryPrice
	if denom == 0 {
		denom = entryPriceEpsilon
	}
	return (price - entryPrice) / denom
}

// open executes an entry fill: cash is debited the full cost (frictions
// included) and the position transitions Flat -> Open.
func (p *portfolio) open(sym string, shares int, price float64, t time.Time, z, cost float64) {
	p.cash -= cost
	p.positions[sym] = &Position{
		Shares:     shares,
		EntryPrice: price,
		EntryTime:  t,
		Z:          z,
	}
}

// close executes an exit fill: proceeds (net of frictions) are credited,
// a trade record is appended, and the position returns to flat.
func (p *portfolio) close(sym string, exitPrice float64, exitTime time.Time, frictionPct float64) {
	pos := p.positions[sym]
	proceeds := float64(pos.Shares) * exitPrice * (1 - frictionPct)
	p.cash += proceeds
	p.trades = append(p.trades, types.TradeRecord{
		Symbol:     sym,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		EntryTime:  pos.EntryTime,
		ExitTime:   exitTime,
		Shares:     pos.Shares,
		PnL:        (exitPrice - pos.EntryPrice) * float64(pos.Shares),
		PnLPct:     pnlPct(pos.EntryPrice, exitPrice),
		ZScore:     pos.Z,
	})
	p.positions[sym] = flatPosition()
}

// recordValuation appends one point to the valuation history.
func (p *portfolio) recordValuation(t time.Time, value float64) {
	p.history = append(p.history, types.EquityPoint{Time: t, Value: value})
}
