package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"meanrev/internal/config"
	"meanrev/types"
)

// WriteTradeReportCSV writes the trade report to a CSV file at the given path.
func (e *Engine) WriteTradeReportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return writeTradeReport(f, e.Trades(), e.daily, e.params)
}

// writeTradeReport writes trades to any io.Writer as CSV.
// You can pass os.Stdout for debugging, or a file.
func writeTradeReport(w io.Writer, trades []types.TradeRecord, daily map[string]types.DailySeries, p *config.Params) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"TimeOfSignal",
		"Ticker",
		"EntryPrice",
		"StopLoss",
		"TargetPrice",
		"RealizedPnL",
		"DailySMAValue",
		"ZScore",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tr := range trades {
		trend := ""
		if series, ok := daily[tr.Symbol]; ok {
			if _, t := series.At(tr.EntryTime); !math.IsNaN(t) {
				trend = formatFloat(t)
			}
		}
		record := []string{
			tr.EntryTime.Format(time.RFC3339),
			tr.Symbol,
			formatFloat(tr.EntryPrice),
			formatFloat(tr.EntryPrice * (1 - p.StopLossPct)),
			formatFloat(tr.EntryPrice * (1 + p.TakeProfitPct)),
			formatFloat(tr.PnL),
			trend,
			formatFloat(tr.ZScore),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	// Check for any error from the csv.Writer
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteEquityCurveCSV writes the resampled equity curve to a CSV file.
func (e *Engine) WriteEquityCurveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create equity file: %w", err)
	}
	defer f.Close()

	return writeEquityCurve(f, e.EquityCurve())
}

func writeEquityCurve(w io.Writer, curve []types.EquityPoint) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"timestamp", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, pt := range curve {
		record := []string{pt.Time.Format(time.RFC3339), formatFloat(pt.Value)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
