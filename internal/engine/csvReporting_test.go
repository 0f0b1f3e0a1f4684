package engine

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"testing"
	"time"

	"meanrev/types"
)

func TestWriteTradeReport(t *testing.T) {
	p := backtestParams("AAPL")
	entryTime := monday.Add((9*60 + 35) * time.Minute)

	trades := []types.TradeRecord{
		{
			Symbol:     "AAPL",
			EntryPrice: 100,
			ExitPrice:  104,
			EntryTime:  entryTime,
			ExitTime:   entryTime.Add(30 * time.Minute),
			Shares:     5,
			PnL:        20,
			PnLPct:     0.04,
			ZScore:     -1.2,
		},
	}
	daily := map[string]types.DailySeries{"AAPL": upDaily(monday)}

	var buf bytes.Buffer
	if err := writeTradeReport(&buf, trades, daily, p); err != nil {
		t.Fatalf("writeTradeReport: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want header + 1 row, got %d records", len(records))
	}

	header := records[0]
	wantHeader := []string{
		"TimeOfSignal", "Ticker", "EntryPrice", "StopLoss",
		"TargetPrice", "RealizedPnL", "DailySMAValue", "ZScore",
	}
	for i, col := range wantHeader {
		if header[i] != col {
			t.Errorf("header[%d]: got %q want %q", i, header[i], col)
		}
	}

	row := records[1]
	if row[0] != entryTime.Format(time.RFC3339) {
		t.Errorf("time: got %q", row[0])
	}
	if row[1] != "AAPL" {
		t.Errorf("ticker: got %q", row[1])
	}
	assertField(t, "entry price", row[2], 100)
	assertField(t, "stop loss", row[3], 100*(1-p.StopLossPct))
	assertField(t, "target price", row[4], 100*(1+p.TakeProfitPct))
	assertField(t, "pnl", row[5], 20)
	assertField(t, "daily sma", row[6], 100)
	assertField(t, "z score", row[7], -1.2)
}

func TestWriteTradeReport_NoDailyData(t *testing.T) {
	p := backtestParams("AAPL")
	trades := []types.TradeRecord{{Symbol: "AAPL", EntryPrice: 100, EntryTime: monday}}

	var buf bytes.Buffer
	if err := writeTradeReport(&buf, trades, map[string]types.DailySeries{}, p); err != nil {
		t.Fatalf("writeTradeReport: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if got := records[1][6]; got != "" {
		t.Errorf("daily sma without data: got %q want empty", got)
	}
}

func TestWriteEquityCurve(t *testing.T) {
	t0 := monday.Add((9*60 + 31) * time.Minute)
	curve := []types.EquityPoint{
		{Time: t0, Value: 10000},
		{Time: t0.Add(time.Minute), Value: 10010},
	}

	var buf bytes.Buffer
	if err := writeEquityCurve(&buf, curve); err != nil {
		t.Fatalf("writeEquityCurve: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "timestamp" || records[0][1] != "value" {
		t.Errorf("header: %v", records[0])
	}
	if records[1][0] != t0.Format(time.RFC3339) {
		t.Errorf("row time: got %q", records[1][0])
	}
	assertField(t, "row value", records[2][1], 10010)
}

func assertField(t *testing.T, name, got string, want float64) {
	t.Helper()
	v, err := strconv.ParseFloat(got, 64)
	if err != nil {
		t.Fatalf("%s: cannot parse %q: %v", name, got, err)
	}
	if math.Abs(v-want) > 1e-9 {
		t.Errorf("%s: got %v want %v", name, v, want)
	}
}
