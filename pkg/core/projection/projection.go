// Package projection builds the explicit-horizon free-cash-flow series the
// DCF model discounts.
//
// FCF = NOPAT - CapEx - ΔWC, where CapEx is proxied by the change in net
// fixed assets plus depreciation and working capital is
// inventory + receivables - payables.
package projection

import (
	"equitylens/pkg/core/assumption"
	"equitylens/pkg/models"
)

// HistoricalFCF computes the free-cash-flow series over the derived history.
// The first period has no prior-year deltas and uses depreciation alone as
// the CapEx proxy.
func HistoricalFCF(d *models.DerivedFinancials) models.PeriodSeries {
	n := len(d.NOPAT)
	fcf := make(models.PeriodSeries, n)
	for i := 0; i < n; i++ {
		capex := d.Depreciation[i]
		deltaWC := 0.0
		if i > 0 {
			capex += d.FixedAssets[i] - d.FixedAssets[i-1]
			deltaWC = workingCapital(d, i) - workingCapital(d, i-1)
		}
		fcf[i] = d.NOPAT[i] - capex - deltaWC
	}
	return fcf
}

// ProjectFCF grows the latest historical FCF at the assumed rate across the
// forecast horizon. A non-positive base falls back to the latest NOPAT so a
// single heavy-investment year does not zero out the whole valuation.
func ProjectFCF(d *models.DerivedFinancials, a assumption.DiscountAssumptions) models.PeriodSeries {
	hist := HistoricalFCF(d)
	base := hist.Latest()
	if base <= 0 {
		base = d.NOPAT.Latest()
	}
	out := make(models.PeriodSeries, a.ForecastYears)
	for i := 0; i < a.ForecastYears; i++ {
		base *= 1 + a.GrowthRate
		out[i] = base
	}
	return out
}

func workingCapital(d *models.DerivedFinancials, i int) float64 {
	return d.Inventory[i] + d.Receivables[i] - d.Payables[i]
}
