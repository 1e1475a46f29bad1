// Package valuation implements the fair-value models: DCF, dividend discount,
// residual income, and relative multiples. All models tolerate missing
// inputs by marking their output invalid instead of failing.
package valuation

import (
	"equitylens/pkg/core/assumption"
	"equitylens/pkg/models"
)

// CalculateWACC computes the discount rate from CAPM cost of equity and
// after-tax cost of debt, weighted by the derived book capital structure.
func CalculateWACC(a assumption.DiscountAssumptions, d *models.DerivedFinancials) models.WACCBreakdown {
	// Ke = Rf + Beta * (Rm - Rf)
	ke := a.RiskFreeRate + a.Beta*(a.MarketReturn-a.RiskFreeRate)

	// Kd = PreTaxKd * (1 - t)
	kd := a.CostOfDebt * (1 - a.TaxRate)

	debt := d.STDebt.Latest() + d.LTDebt.Latest()
	equity := d.Equity.Latest()
	total := debt + equity

	we, wd := 1.0, 0.0
	if total > 0 {
		we = equity / total
		wd = debt / total
	}

	return models.WACCBreakdown{
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WeightEquity: we,
		WeightDebt:   wd,
		WACC:         ke*we + kd*wd,
	}
}
