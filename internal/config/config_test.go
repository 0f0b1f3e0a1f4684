package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
symbols:
  - AAPL
  - MSFT
z_threshold: 1.25
initial_capital: 50000
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(p.Symbols) != 2 || p.Symbols[0] != "AAPL" {
		t.Errorf("symbols not loaded, got %v", p.Symbols)
	}
	if p.ZThreshold != 1.25 {
		t.Errorf("z_threshold override not applied, got %v", p.ZThreshold)
	}
	if p.InitialCapital != 50000 {
		t.Errorf("initial_capital override not applied, got %v", p.InitialCapital)
	}
	// untouched keys keep their defaults
	if p.IntradayLookback != 15 {
		t.Errorf("expected default intraday_lookback 15, got %d", p.IntradayLookback)
	}
	if p.MaxGrossExposure != 2.2 {
		t.Errorf("expected default max_gross_exposure 2.2, got %v", p.MaxGrossExposure)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Params {
		p := Default()
		p.Symbols = []string{"AAPL"}
		return p
	}

	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults with symbols", func(p *Params) {}, false},
		{"no symbols", func(p *Params) { p.Symbols = nil }, true},
		{"zero z threshold", func(p *Params) { p.ZThreshold = 0 }, true},
		{"negative confirm bars", func(p *Params) { p.ConfirmBars = -1 }, true},
		{"risk per trade too large", func(p *Params) { p.RiskPerTrade = 1 }, true},
		{"position fraction above one", func(p *Params) { p.MaxPositionFraction = 1.5 }, true},
		{"zero gross exposure", func(p *Params) { p.MaxGrossExposure = 0 }, true},
		{"zero stop loss", func(p *Params) { p.StopLossPct = 0 }, true},
		{"negative slippage", func(p *Params) { p.SlippagePct = -0.1 }, true},
		{"negative skip", func(p *Params) { p.SkipFirstMinutes = -1 }, true},
		{"zero capital", func(p *Params) { p.InitialCapital = 0 }, true},
		{"zero trend window", func(p *Params) { p.DailyTrendWindow = 0 }, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := valid()
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
