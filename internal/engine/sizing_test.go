package engine

import (
	"testing"

	"meanrev/internal/config"
)

func sizingParams() *config.Params {
	p := config.Default()
	p.Symbols = []string{"AAPL"}
	p.TransactionCostPct = 0
	p.SlippagePct = 0
	return &p
}

func TestSizePosition(t *testing.T) {
	p := sizingParams() // risk 0.035, fraction cap 0.05

	// risk budget 350, risk per share 2 -> 175 shares, fraction cap
	// floor(10000*0.05/100) = 5 wins
	candidate := entryCandidate{ExecPrice: 100, Z: -1, Volatility: 0.001, ATR: 2}

	tests := []struct {
		name       string
		capacity   float64
		cash       float64
		wantShares int
		wantCost   float64
		wantReject sizeReject
	}{
		{"fraction capped", 22000, 10000, 5, 500, sizeOK},
		{"capacity caps further", 250, 10000, 2, 200, sizeOK},
		{"capacity below one share", 50, 10000, 0, 0, sizeRejectRisk},
		{"cost exceeds cash", 22000, 400, 0, 0, sizeRejectCash},
		{"cost exceeds cash reserve", 22000, 600, 0, 0, sizeRejectRisk},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, reject := sizePosition(candidate, 10000, tc.capacity, tc.cash, p)
			if reject != tc.wantReject {
				t.Fatalf("reject: got %d want %d", reject, tc.wantReject)
			}
			if got.Shares != tc.wantShares {
				t.Errorf("shares: got %d want %d", got.Shares, tc.wantShares)
			}
			if got.Cost != tc.wantCost {
				t.Errorf("cost: got %v want %v", got.Cost, tc.wantCost)
			}
		})
	}
}

func TestSizePosition_Frictions(t *testing.T) {
	p := sizingParams()
	p.TransactionCostPct = 0.001
	p.SlippagePct = 0.002

	candidate := entryCandidate{ExecPrice: 100, Volatility: 0.001, ATR: 2}
	got, reject := sizePosition(candidate, 10000, 22000, 10000, p)
	if reject != sizeOK {
		t.Fatalf("unexpected reject %d", reject)
	}
	want := 5 * 100 * (1 + p.TransactionCostPct + p.SlippagePct)
	if got.Cost != want {
		t.Errorf("cost with frictions: got %v want %v", got.Cost, want)
	}
}

func TestSizePosition_RiskPerShareDominatesFractionCap(t *testing.T) {
	p := sizingParams()

	// risk per share 70 -> floor(350/70) = 5, below the fraction cap of 50
	candidate := entryCandidate{ExecPrice: 10, Volatility: 0.001, ATR: 70}
	got, reject := sizePosition(candidate, 10000, 22000, 10000, p)
	if reject != sizeOK {
		t.Fatalf("unexpected reject %d", reject)
	}
	if got.Shares != 5 {
		t.Errorf("shares: got %d want 5", got.Shares)
	}
}

func TestSizePosition_TinyBudgetRejects(t *testing.T) {
	p := sizingParams()

	// risk budget smaller than one share of risk
	candidate := entryCandidate{ExecPrice: 100, Volatility: 0.001, ATR: 500}
	_, reject := sizePosition(candidate, 10000, 22000, 10000, p)
	if reject != sizeRejectRisk {
		t.Errorf("reject: got %d want sizeRejectRisk", reject)
	}
}
