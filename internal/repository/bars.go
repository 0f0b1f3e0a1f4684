package repository

import (
	"context"
	"math"
	"time"

	"meanrev/types"
)

// Market hours, minutes from midnight.
const (
	marketOpenMinute  = 9*60 + 30
	marketCloseMinute = 16 * 60
)

// GetMinuteBars returns one trading day's minute bars for an asset,
// restricted to market hours. Indicator columns are left NaN.
func (db *Database) GetMinuteBars(assetID int, day time.Time, ctx context.Context) ([]types.Bar, error) {
	midnight := day.UTC().Truncate(24 * time.Hour)
	start := midnight.Add(marketOpenMinute * time.Minute)
	// inclusive of the 16:00 bar
	end := midnight.Add((marketCloseMinute + 1) * time.Minute)

	rows, err := db.bars.MinuteBars(ctx, int32(assetID), start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoBars
	}
	return convertBars(rows), nil
}

// GetDailyCandles returns daily aggregates for an asset over [start, end).
func (db *Database) GetDailyCandles(assetID int, start, end time.Time, ctx context.Context) ([]types.Bar, error) {
	rows, err := db.bars.DailyAggregates(ctx, int32(assetID), start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoBars
	}
	return convertBars(rows), nil
}

func convertBars(rows []barRow) []types.Bar {
	bars := make([]types.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, types.Bar{
			Timestamp:  row.Bucket,
			Open:       row.Open.InexactFloat64(),
			High:       row.High.InexactFloat64(),
			Low:        row.Low.InexactFloat64(),
			Close:      row.Close.InexactFloat64(),
			Volume:     row.Volume.InexactFloat64(),
			Z:          math.NaN(),
			Vol15:      math.NaN(),
			Volatility: math.NaN(),
			ATR:        math.NaN(),
		})
	}
	return bars
}
