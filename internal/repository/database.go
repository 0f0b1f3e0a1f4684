package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrAssetNotFound = errors.New("not found in datasource")
	ErrNoBars        = errors.New("no bars found in datasource")
)

type assetRow struct {
	ID         int32
	Ticker     string
	Name       string
	Type       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

type barRow struct {
	Bucket time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

type assetsSource interface {
	AssetByTicker(ctx context.Context, ticker string) (assetRow, error)
}

type barsSource interface {
	MinuteBars(ctx context.Context, assetID int32, start, end time.Time) ([]barRow, error)
	DailyAggregates(ctx context.Context, assetID int32, start, end time.Time) ([]barRow, error)
}

// Database holds the database connection and the typed query sources.
type Database struct {
	assets assetsSource
	bars   barsSource
	conn   *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}

	queries := pgQueries{conn: conn}
	return Database{
		assets: queries,
		bars:   queries,
		conn:   conn,
	}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}

const assetByTickerQuery = `
SELECT id, ticker, name, type, created_at, modified_at
FROM assets
WHERE ticker = $1`

const minuteBarsQuery = `
SELECT timestamp, open, high, low, close, volume
FROM minute_bars
WHERE asset_id = $1 AND timestamp >= $2 AND timestamp < $3
ORDER BY timestamp`

const dailyAggregatesQuery = `
SELECT time_bucket('1 day', timestamp) AS bucket,
       first(open, timestamp) AS open,
       max(high) AS high,
       min(low) AS low,
       last(close, timestamp) AS close,
       sum(volume) AS volume
FROM minute_bars
WHERE asset_id = $1 AND timestamp >= $2 AND timestamp < $3
GROUP BY bucket
ORDER BY bucket`

type pgQueries struct {
	conn *pgxpool.Pool
}

func (q pgQueries) AssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	var row assetRow
	err := q.conn.QueryRow(ctx, assetByTickerQuery, ticker).Scan(
		&row.ID, &row.Ticker, &row.Name, &row.Type, &row.CreatedAt, &row.ModifiedAt,
	)
	return row, err
}

func (q pgQueries) MinuteBars(ctx context.Context, assetID int32, start, end time.Time) ([]barRow, error) {
	return q.queryBars(ctx, minuteBarsQuery, assetID, start, end)
}

func (q pgQueries) DailyAggregates(ctx context.Context, assetID int32, start, end time.Time) ([]barRow, error) {
	return q.queryBars(ctx, dailyAggregatesQuery, assetID, start, end)
}

func (q pgQueries) queryBars(ctx context.Context, query string, assetID int32, start, end time.Time) ([]barRow, error) {
	rows, err := q.conn.Query(ctx, query, assetID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []barRow
	for rows.Next() {
		var row barRow
		if err := rows.Scan(&row.Bucket, &row.Open, &row.High, &row.Low, &row.Close, &row.Volume); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
