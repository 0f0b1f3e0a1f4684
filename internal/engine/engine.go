package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meanrev/internal/config"
	"meanrev/internal/indicators"
	"meanrev/internal/repository"
	"meanrev/types"
)

type dataStore interface {
	GetAssetByTicker(ticker string, ctx context.Context) (*types.Asset, error)
	GetMinuteBars(assetID int, day time.Time, ctx context.Context) ([]types.Bar, error)
	GetDailyCandles(assetID int, start, end time.Time, ctx context.Context) ([]types.Bar, error)
}

// Engine wires the data store, the indicator computation, and the
// backtester, and exposes the run's results.
type Engine struct {
	db     dataStore
	params *config.Params
	log    *zap.Logger

	assets map[string]*types.Asset
	daily  map[string]types.DailySeries
	bt     *backtester
	curve  []types.EquityPoint
}

func NewEngine(db dataStore, params *config.Params, log *zap.Logger) *Engine {
	return &Engine{
		db:     db,
		params: params,
		log:    log,
		assets: make(map[string]*types.Asset),
		daily:  make(map[string]types.DailySeries),
	}
}

// Run loads the daily series for every symbol and simulates the date
// range. It fails only on unrecoverable setup errors; in-range data
// problems degrade the run instead of aborting it.
func (e *Engine) Run(ctx context.Context, start, end time.Time) error {
	if err := e.loadDailySeries(ctx, start, end); err != nil {
		return err
	}

	e.bt = newBacktester(e.params, &engineFeed{engine: e, ctx: ctx}, e.log)
	e.bt.run(start, end)
	e.curve = BuildEquityCurve(e.bt.pf.history, e.params.InitialCapital)
	return nil
}

// loadDailySeries fetches daily aggregates per symbol (with enough lead
// days to warm up the trend window) and computes the trend series.
func (e *Engine) loadDailySeries(ctx context.Context, start, end time.Time) error {
	// calendar-day buffer generously covering the trend window in
	// business days
	lead := start.AddDate(0, 0, -(2*e.params.DailyTrendWindow + 7))

	for _, sym := range e.params.Symbols {
		asset, err := e.db.GetAssetByTicker(sym, ctx)
		if err != nil {
			return fmt.Errorf("load asset %s: %w", sym, err)
		}
		e.assets[sym] = asset

		candles, err := e.db.GetDailyCandles(asset.Id, lead, end.AddDate(0, 0, 1), ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNoBars) {
				e.log.Warn("no daily data for symbol", zap.String("symbol", sym))
				e.daily[sym] = types.NewDailySeries()
				continue
			}
			return fmt.Errorf("load daily candles %s: %w", sym, err)
		}

		closes := make([]float64, len(candles))
		for i, c := range candles {
			closes[i] = c.Close
		}
		trend := indicators.DailyTrend(closes, e.params.DailyTrendWindow)

		series := types.NewDailySeries()
		for i, c := range candles {
			day := c.Timestamp.UTC().Truncate(24 * time.Hour)
			series.Close[day] = closes[i]
			series.Trend[day] = trend[i]
		}
		e.daily[sym] = series
	}
	return nil
}

// EquityCurve returns the resampled 1-minute equity curve.
func (e *Engine) EquityCurve() []types.EquityPoint {
	return e.curve
}

// Trades returns the append-only trade log.
func (e *Engine) Trades() []types.TradeRecord {
	if e.bt == nil {
		return nil
	}
	return e.bt.pf.trades
}

// Diagnostics returns the run's decision counters.
func (e *Engine) Diagnostics() Diagnostics {
	if e.bt == nil {
		return Diagnostics{}
	}
	return e.bt.pf.diag
}

// Summary computes the performance statistics of the finished run.
func (e *Engine) Summary() Summary {
	return Summarize(e.curve, e.Trades(), e.params.MinutesPerDay)
}

// engineFeed adapts the data store plus indicator computation to the
// barFeed the backtester consumes.
type engineFeed struct {
	engine *Engine
	ctx    context.Context
}

func (f *engineFeed) DayBars(symbol string, date time.Time) ([]types.Bar, error) {
	asset, ok := f.engine.assets[symbol]
	if !ok {
		return nil, nil
	}
	bars, err := f.engine.db.GetMinuteBars(asset.Id, date, f.ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoBars) {
			return nil, nil
		}
		return nil, err
	}
	p := f.engine.params
	return indicators.EnrichIntraday(bars, p.IntradayLookback, p.ATRWindow, p.RollStdFloor), nil
}

func (f *engineFeed) Daily(symbol string) types.DailySeries {
	return f.engine.daily[symbol]
}
