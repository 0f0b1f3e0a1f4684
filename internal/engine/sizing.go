package engine

import (
	"math"

	"meanrev/internal/config"
)

// cashReserveFactor rejects entries that would consume more than this
// share of available cash even when the cost is affordable.
const cashReserveFactor = 0.75

// sizeReject distinguishes the two rejection counters the sizer can hit.
type sizeReject int

const (
	sizeOK sizeReject = iota
	sizeRejectRisk // size_fail
	sizeRejectCash // cash_fail
)

type sizeResult struct {
	Shares int
	Cost   float64
}

// sizePosition converts a risk budget into a share count bounded by the
// position-fraction cap, the remaining exposure capacity, and cash. Pure
// function of the candidate plus the current valuation snapshot.
func sizePosition(
	c entryCandidate,
	totalValue, remainingCapacity, cash float64,
	p *config.Params,
) (sizeResult, sizeReject) {
	dollarRiskPerShare := math.Max(c.ATR, math.Max(c.ExecPrice*c.Volatility, p.ATRFloor))
	if dollarRiskPerShare <= 0 || math.IsNaN(dollarRiskPerShare) || math.IsInf(dollarRiskPerShare, 0) {
		return sizeResult{}, sizeRejectRisk
	}

	riskBudget := totalValue * p.RiskPerTrade
	approxShares := int(math.Floor(riskBudget / dollarRiskPerShare))
	maxSharesByFraction := int(math.Floor(totalValue * p.MaxPositionFraction / math.Max(c.ExecPrice, 1e-6)))
	if approxShares > maxSharesByFraction {
		approxShares = maxSharesByFraction
	}
	if approxShares <= 0 {
		return sizeResult{}, sizeRejectRisk
	}

	allowedValue := math.Min(float64(approxShares)*c.ExecPrice, remainingCapacity)
	nShares := int(math.Floor(allowedValue / c.ExecPrice))
	if nShares <= 0 {
		return sizeResult{}, sizeRejectRisk
	}

	cost := float64(nShares) * c.ExecPrice * (1 + p.TransactionCostPct + p.SlippagePct)
	if cost > cash {
		return sizeResult{}, sizeRejectCash
	}
	if cost > cash*cashReserveFactor {
		return sizeResult{}, sizeRejectRisk
	}

	return sizeResult{Shares: nShares, Cost: cost}, sizeOK
}
