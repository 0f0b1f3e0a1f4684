package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"meanrev/internal/config"
	"meanrev/internal/indicators"
	"meanrev/types"
)

// lowCashFraction of the initial capital below which the run warns but
// keeps trading with whatever cash remains.
const lowCashFraction = 0.01

// barFeed supplies the already-computed indicator data the simulation
// consumes: one enriched minute-bar table per symbol per day, and one
// daily close/trend series per symbol.
type barFeed interface {
	// DayBars returns nil with no error when the symbol has no data for
	// the day; the symbol is then inert for that date.
	DayBars(symbol string, date time.Time) ([]types.Bar, error)
	Daily(symbol string) types.DailySeries
}

// backtester walks trading dates in order, bars within a date in index
// order, and symbols within a bar in the configured list order. That
// ordering is load-bearing: the exposure budget is shared across symbols
// within a bar, so earlier symbols have first claim on it.
type backtester struct {
	params  *config.Params
	symbols []string
	feed    barFeed
	pf      *portfolio
	log     *zap.Logger
}

func newBacktester(params *config.Params, feed barFeed, log *zap.Logger) *backtester {
	return &backtester{
		params:  params,
		symbols: params.Symbols,
		feed:    feed,
		pf:      newPortfolio(params.Symbols, params.InitialCapital),
		log:     log,
	}
}

// run simulates every business date in [start, end]. A failing date is
// logged and closed out at its current cash value; the run continues.
func (b *backtester) run(start, end time.Time) {
	dates := businessDates(start, end)
	bar := initProgressBar(len(dates))

	b.pf.recordValuation(start, b.pf.cash)

	for _, date := range dates {
		b.log.Info("processing date", zap.String("date", date.Format("2006-01-02")))
		if err := b.processDay(date); err != nil {
			b.log.Error("date failed, closing out at current cash",
				zap.String("date", date.Format("2006-01-02")),
				zap.Error(err))
			b.pf.recordValuation(dayCloseTime(date), b.pf.cash)
		}
		bar.Add(1)
	}
}

// processDay simulates one trading date. Any panic is converted into an
// error so a bad date cannot take down the run; mutations already applied
// when a date fails stay in place (the failure boundary is the day, not
// the bar or the trade).
func (b *backtester) processDay(date time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("process day %s: %v", date.Format("2006-01-02"), r)
		}
	}()

	tables := make(map[string][]types.Bar, len(b.symbols))
	maxLen := 0
	for _, sym := range b.symbols {
		bars, err := b.feed.DayBars(sym, date)
		if err != nil {
			return fmt.Errorf("load %s: %w", sym, err)
		}
		tables[sym] = bars
		if len(bars) > maxLen {
			maxLen = len(bars)
		}
	}
	if maxLen == 0 {
		b.pf.recordValuation(dayCloseTime(date), b.pf.cash)
		return nil
	}

	startIdx := b.params.SkipFirstMinutes
	endIdx := maxLen - b.params.SkipLastMinutes - 1
	if endIdx <= startIdx {
		b.pf.recordValuation(dayCloseTime(date), b.pf.cash)
		return nil
	}

	medianVolume := make(map[string]float64, len(b.symbols))
	for sym, bars := range tables {
		if len(bars) == 0 {
			continue
		}
		volumes := make([]float64, len(bars))
		for i, bar := range bars {
			volumes[i] = bar.Volume
		}
		medianVolume[sym] = indicators.Median(volumes)
	}

	enteredToday := make(map[string]bool, len(b.symbols))

	for i := startIdx; i < endIdx; i++ {
		b.processBar(date, tables, i, medianVolume, enteredToday)

		if b.pf.cash < b.params.InitialCapital*lowCashFraction {
			b.log.Warn("cash very low, continuing",
				zap.String("date", date.Format("2006-01-02")),
				zap.Int("bar", i),
				zap.Float64("cash", b.pf.cash))
		}
	}

	b.closeDay(date, tables)
	b.pf.recordValuation(dayCloseTime(date), b.pf.cash)
	return nil
}

// processBar handles one bar index across all symbols: exits first, then
// entries, then the mark-to-market snapshot.
func (b *backtester) processBar(
	date time.Time,
	tables map[string][]types.Bar,
	i int,
	medianVolume map[string]float64,
	enteredToday map[string]bool,
) {
	// Fill prices are the next bar's open, where finite and positive.
	fillPrices := make(map[string]float64, len(b.symbols))
	for sym, bars := range tables {
		if bars == nil || i+1 >= len(bars) {
			continue
		}
		p := bars[i+1].Open
		if isFinite(p) && p > 0 {
			fillPrices[sym] = p
		}
	}

	// The exposure budget is computed once per bar and deliberately not
	// decremented as symbols enter: every entry this bar sees the same
	// remaining capacity snapshot.
	totalValue := b.pf.totalValue(fillPrices)
	grossExposure := b.pf.grossExposure(fillPrices)
	remainingCapacity := math.Max(0, totalValue*b.params.MaxGrossExposure-grossExposure)

	for _, sym := range b.symbols {
		bars := tables[sym]
		if bars == nil || i+1 >= len(bars) {
			b.pf.diag.MissingData++
			continue
		}

		execPrice := bars[i+1].Open
		if !isFinite(execPrice) || execPrice <= 0 {
			b.pf.diag.PriceFail++
			continue
		}

		pos := b.pf.positions[sym]

		// Exit check runs before any entry consideration. A symbol that
		// exits this bar is done for the bar.
		if pos.Shares != 0 {
			ret := pnlPct(pos.EntryPrice, execPrice)
			if ret <= -b.params.StopLossPct || ret >= b.params.TakeProfitPct {
				b.pf.close(sym, execPrice, bars[i+1].Timestamp, b.exitFrictionPct())
				b.pf.diag.IntradayExits++
				continue
			}
		}

		if pos.Shares != 0 || enteredToday[sym] {
			continue
		}

		candidate, reject := evaluateEntry(bars, i, b.feed.Daily(sym), date, medianVolume[sym], execPrice, b.params)
		if reject != rejectNone {
			b.countReject(reject)
			continue
		}

		if remainingCapacity <= 0 {
			b.pf.diag.SizeFail++
			continue
		}

		sized, sreject := sizePosition(candidate, totalValue, remainingCapacity, b.pf.cash, b.params)
		if sreject != sizeOK {
			b.countSizeReject(sreject)
			continue
		}

		b.pf.open(sym, sized.Shares, execPrice, bars[i+1].Timestamp, candidate.Z, sized.Cost)
		enteredToday[sym] = true
		b.pf.diag.Entries++
	}

	// Mark-to-market snapshot at the first available fill timestamp.
	totalValue = b.pf.totalValue(fillPrices)
	for _, sym := range b.symbols {
		bars := tables[sym]
		if bars != nil && i+1 < len(bars) {
			b.pf.recordValuation(bars[i+1].Timestamp, totalValue)
			break
		}
	}
}

// closeDay force-closes every still-open position at the day's final close
// price. A position whose symbol has no table today has no price to settle
// against and is zeroed without proceeds.
func (b *backtester) closeDay(date time.Time, tables map[string][]types.Bar) {
	for _, sym := range b.symbols {
		pos := b.pf.positions[sym]
		if pos.Shares == 0 {
			continue
		}
		bars := tables[sym]
		if len(bars) > 0 {
			closePrice := bars[len(bars)-1].Close
			b.pf.close(sym, closePrice, dayCloseTime(date), b.exitFrictionPct())
			b.pf.diag.EODCloses++
		} else {
			b.pf.positions[sym] = flatPosition()
		}
	}
}

func (b *backtester) exitFrictionPct() float64 {
	return b.params.TransactionCostPct + b.params.SlippagePct
}

func (b *backtester) countReject(r rejectReason) {
	switch r {
	case rejectZ:
		b.pf.diag.ZFail++
	case rejectVolume:
		b.pf.diag.VolFail++
	case rejectTrend:
		b.pf.diag.TrendFail++
	case rejectConfirm:
		b.pf.diag.ConfirmFail++
	}
}

func (b *backtester) countSizeReject(r sizeReject) {
	switch r {
	case sizeRejectRisk:
		b.pf.diag.SizeFail++
	case sizeRejectCash:
		b.pf.diag.CashFail++
	}
}

// businessDates lists the Monday-Friday dates in [start, end] at midnight
// UTC. Exchange holidays show up as dates with no data and are skipped by
// the scheduler like any other empty day.
func businessDates(start, end time.Time) []time.Time {
	var dates []time.Time
	day := start.UTC().Truncate(24 * time.Hour)
	last := end.UTC().Truncate(24 * time.Hour)
	for !day.After(last) {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// dayCloseTime is the session close (16:00) of a date.
func dayCloseTime(date time.Time) time.Time {
	return date.UTC().Truncate(24 * time.Hour).Add(16 * time.Hour)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
