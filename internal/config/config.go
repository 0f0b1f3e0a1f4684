package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Params is the full strategy parameter set. It is built once at startup
// and passed by pointer to every component; nothing mutates it after Load.
type Params struct {
	Symbols []string `yaml:"symbols"`

	DailyTrendWindow int `yaml:"daily_trend_window"`
	IntradayLookback int `yaml:"intraday_lookback"`
	ATRWindow        int `yaml:"atr_window"`

	ZThreshold      float64 `yaml:"z_threshold"`
	ConfirmBars     int     `yaml:"confirm_bars"`
	VolumeMinFactor float64 `yaml:"volume_min_factor"`

	RiskPerTrade        float64 `yaml:"risk_per_trade"`
	MaxPositionFraction float64 `yaml:"max_position_fraction"`
	MaxGrossExposure    float64 `yaml:"max_gross_exposure"`
	// MaxOpenPositions is reserved. No part of the simulation enforces it.
	MaxOpenPositions int `yaml:"max_open_positions"`

	StopLossPct   float64 `yaml:"stop_loss_pct"`
	TakeProfitPct float64 `yaml:"take_profit_pct"`

	TransactionCostPct float64 `yaml:"transaction_cost_pct"`
	SlippagePct        float64 `yaml:"slippage_pct"`

	MinutesPerDay    int `yaml:"minutes_per_day"`
	SkipFirstMinutes int `yaml:"skip_first_minutes"`
	SkipLastMinutes  int `yaml:"skip_last_minutes"`

	InitialCapital float64 `yaml:"initial_capital"`

	RollStdFloor float64 `yaml:"roll_std_floor"`
	VolFloor     float64 `yaml:"vol_floor"`
	ATRFloor     float64 `yaml:"atr_floor"`
}

// Default returns the production parameter set.
func Default() Params {
	return Params{
		DailyTrendWindow: 5,
		IntradayLookback: 15,
		ATRWindow:        14,

		ZThreshold:      0.65,
		ConfirmBars:     0,
		VolumeMinFactor: 0.35,

		RiskPerTrade:        0.035,
		MaxPositionFraction: 0.05,
		MaxGrossExposure:    2.2,
		MaxOpenPositions:    14,

		StopLossPct:   0.022,
		TakeProfitPct: 0.10,

		TransactionCostPct: 0.0002,
		SlippagePct:        0.0005,

		MinutesPerDay:    390,
		SkipFirstMinutes: 3,
		SkipLastMinutes:  5,

		InitialCapital: 1_000_000,

		RollStdFloor: 1e-4,
		VolFloor:     1e-4,
		ATRFloor:     1e-4,
	}
}

func (p *Params) Validate() error {
	if len(p.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if p.ZThreshold <= 0 {
		return fmt.Errorf("z_threshold must be > 0, got %v", p.ZThreshold)
	}
	if p.ConfirmBars < 0 {
		return fmt.Errorf("confirm_bars must be >= 0, got %d", p.ConfirmBars)
	}
	if p.RiskPerTrade <= 0 || p.RiskPerTrade >= 1 {
		return fmt.Errorf("risk_per_trade must be in (0, 1), got %v", p.RiskPerTrade)
	}
	if p.MaxPositionFraction <= 0 || p.MaxPositionFraction > 1 {
		return fmt.Errorf("max_position_fraction must be in (0, 1], got %v", p.MaxPositionFraction)
	}
	if p.MaxGrossExposure <= 0 {
		return fmt.Errorf("max_gross_exposure must be > 0, got %v", p.MaxGrossExposure)
	}
	if p.MaxOpenPositions < 0 {
		return fmt.Errorf("max_open_positions must be >= 0, got %d", p.MaxOpenPositions)
	}
	if p.StopLossPct <= 0 || p.TakeProfitPct <= 0 {
		return errors.New("stop_loss_pct and take_profit_pct must be > 0")
	}
	if p.TransactionCostPct < 0 || p.SlippagePct < 0 {
		return errors.New("transaction_cost_pct and slippage_pct cannot be negative")
	}
	if p.SkipFirstMinutes < 0 || p.SkipLastMinutes < 0 {
		return errors.New("skip_first_minutes and skip_last_minutes cannot be negative")
	}
	if p.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be > 0, got %v", p.InitialCapital)
	}
	if p.DailyTrendWindow <= 0 || p.IntradayLookback <= 0 || p.ATRWindow <= 0 {
		return errors.New("indicator windows must be > 0")
	}
	return nil
}

// Load reads a YAML parameter file over the defaults.
func Load(path string) (*Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	p := Default()
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &p, nil
}
