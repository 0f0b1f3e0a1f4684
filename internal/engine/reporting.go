package engine

import (
	"math"
	"sync"
	"time"

	"meanrev/types"
)

const tradingDaysPerYear = 252

// Summary is the performance snapshot computed from the final equity curve
// and trade log.
type Summary struct {
	InitialValue     float64
	FinalValue       float64
	TotalReturn      float64
	AnnualizedReturn float64
	MaxDrawdown      float64
	Sharpe           float64
	Trades           int
	WinRate          float64
	AvgWin           float64
	AvgLoss          float64
}

// Summarize computes the performance statistics. The independent metrics
// are calculated concurrently; each goroutine writes a disjoint set of
// fields.
func Summarize(curve []types.EquityPoint, trades []types.TradeRecord, minutesPerDay int) Summary {
	var s Summary
	if len(curve) == 0 {
		return s
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.InitialValue = curve[0].Value
		s.FinalValue = curve[len(curve)-1].Value
		s.TotalReturn, s.AnnualizedReturn = calcReturns(curve)
	}()
	go func() {
		defer wg.Done()
		s.MaxDrawdown = calcMaxDrawdown(curve)
		s.Sharpe = calcSharpe(curve, minutesPerDay)
	}()
	go func() {
		defer wg.Done()
		s.Trades = len(trades)
		s.WinRate, s.AvgWin, s.AvgLoss = calcTradeStats(trades)
	}()

	wg.Wait()
	return s
}

func calcReturns(curve []types.EquityPoint) (total, annualized float64) {
	start := curve[0]
	end := curve[len(curve)-1]
	if start.Value == 0 {
		return 0, 0
	}
	total = end.Value/start.Value - 1

	// calendar-date difference, partial days dropped
	startDay := start.Time.UTC().Truncate(24 * time.Hour)
	endDay := end.Time.UTC().Truncate(24 * time.Hour)
	days := endDay.Sub(startDay).Hours() / 24
	if days < 1 {
		days = 1
	}
	annualized = math.Pow(1+total, tradingDaysPerYear/days) - 1
	return total, annualized
}

func calcMaxDrawdown(curve []types.EquityPoint) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, pt := range curve {
		if pt.Value > peak {
			peak = pt.Value
		}
		if peak > 0 {
			dd := (pt.Value - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// calcSharpe annualizes the per-minute return Sharpe ratio by the square
// root of the number of minutes in a trading year.
func calcSharpe(curve []types.EquityPoint, minutesPerDay int) float64 {
	if len(curve) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1].Value != 0 {
			returns = append(returns, curve[i].Value/curve[i-1].Value-1)
		}
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	m := sum / float64(len(returns))

	var varianceSum float64
	for _, r := range returns {
		d := r - m
		varianceSum += d * d
	}
	std := math.Sqrt(varianceSum / float64(len(returns)-1))
	if std == 0 {
		return 0
	}
	return m / std * math.Sqrt(float64(tradingDaysPerYear*minutesPerDay))
}

func calcTradeStats(trades []types.TradeRecord) (winRate, avgWin, avgLoss float64) {
	if len(trades) == 0 {
		return 0, 0, 0
	}
	wins, losses := 0, 0
	sumWins, sumLosses := 0.0, 0.0
	for _, tr := range trades {
		if tr.PnL > 0 {
			wins++
			sumWins += tr.PnL
		} else {
			losses++
			sumLosses += tr.PnL
		}
	}
	winRate = float64(wins) / float64(len(trades))
	if wins > 0 {
		avgWin = sumWins / float64(wins)
	}
	if losses > 0 {
		avgLoss = sumLosses / float64(losses)
	}
	return winRate, avgWin, avgLoss
}
