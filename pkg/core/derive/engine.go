// Package derive converts resolved raw line items into the valuation-ready
// financial schema. Every output field always carries a numeric value; the
// engine substitutes documented estimation fallbacks for missing inputs and
// fails only when revenue is unresolvable for every period.
package derive

import (
	"errors"
	"log"

	"equitylens/pkg/core/normalize"
	"equitylens/pkg/core/resolve"
	"equitylens/pkg/models"
)

// ErrUnresolvableCompany reports that revenue was absent across all periods.
// Individual missing lines are recoverable; a company without revenue is not.
var ErrUnresolvableCompany = errors.New("derive: revenue unresolvable for all periods")

// Engine is the arithmetic core of the pipeline.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine after validating the policy.
func NewEngine(policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{policy: policy}, nil
}

// Policy exposes the active constants (share-count resolution reuses them).
func (e *Engine) Policy() Policy {
	return e.policy
}

// Derive produces the complete derived schema from the raw table. Series in
// the raw table may have heterogeneous lengths and are in the bundle's source
// unit; the engine pads them to the policy window and converts units before
// the per-period arithmetic. Periods are derived independently.
func (e *Engine) Derive(raw *models.RawFinancialTable, labels []string, unit models.SourceUnit) (*models.DerivedFinancials, error) {
	n := e.policy.HistoricalPeriods

	align := func(s models.PeriodSeries) models.PeriodSeries {
		out, err := normalize.Pad(s, n)
		if err != nil {
			// Unreachable: policy validation guarantees a positive window.
			panic(err)
		}
		return out
	}
	pad := func(s models.PeriodSeries) models.PeriodSeries {
		return align(normalize.ConvertSeries(s, unit))
	}

	revenue := pad(raw.Revenue)
	if revenue.IsZero() {
		return nil, ErrUnresolvableCompany
	}

	d := &models.DerivedFinancials{
		PeriodLabels:   normalize.PadLabels(labels, n),
		Revenue:        revenue,
		Depreciation:   pad(raw.Depreciation),
		Interest:       pad(raw.Interest),
		InterestIncome: pad(raw.InterestIncome),
		Tax:            make(models.PeriodSeries, n),
		TaxRate:        make(models.PeriodSeries, n),
		COGS:           make(models.PeriodSeries, n),
		Opex:           make(models.PeriodSeries, n),
		EBIT:           make(models.PeriodSeries, n),
		EBITDA:         make(models.PeriodSeries, n),
		NOPAT:          make(models.PeriodSeries, n),
		FixedAssets:    pad(raw.FixedAssets),
		Inventory:      make(models.PeriodSeries, n),
		Receivables:    make(models.PeriodSeries, n),
		Payables:       make(models.PeriodSeries, n),
		Cash:           make(models.PeriodSeries, n),
		Equity:         make(models.PeriodSeries, n),
		STDebt:         make(models.PeriodSeries, n),
		LTDebt:         make(models.PeriodSeries, n),
		IsNBFC:         raw.IsNBFC,
	}

	// Profit proxy: a direct operating/financing profit line wins, else it is
	// derived from PBT + interest + depreciation.
	profit, direct := resolve.ResolveProfitProxy(
		pad(raw.OperatingProfit), pad(raw.ProfitBeforeTax), d.Interest, d.Depreciation)
	profit = align(profit)
	if !direct {
		d.Notes = append(d.Notes, models.DerivationNote{Field: "ebit", Method: "pbt_interest_depreciation"})
	}

	rawTax := pad(raw.Tax)
	totalExpenses := pad(raw.TotalExpenses)

	expenseSplitUsed := false
	defaultTaxUsed := false
	for i := 0; i < n; i++ {
		// 1. EBIT / EBITDA. With a direct operating profit line the proxy IS
		// ebit; the derived proxy is ebitda (PBT+interest+depreciation).
		if direct {
			d.EBIT[i] = profit[i]
			d.EBITDA[i] = d.EBIT[i] + d.Depreciation[i]
		} else {
			d.EBITDA[i] = profit[i]
			d.EBIT[i] = d.EBITDA[i] - d.Depreciation[i]
		}

		// 2. COGS / Opex allocation.
		if d.Revenue[i] != 0 {
			cogs := e.policy.COGSRevenueRatio * d.Revenue[i]
			opex := d.Revenue[i] - cogs - d.EBITDA[i]
			if opex < 0 && totalExpenses[i] != 0 {
				cogs = e.policy.TotalExpenseCOGSShare * totalExpenses[i]
				opex = totalExpenses[i] - cogs
				expenseSplitUsed = true
			} else if opex < 0 {
				opex = 0
			}
			d.COGS[i] = cogs
			d.Opex[i] = opex
		}

		// 3. Tax and effective rate.
		rate := e.policy.DefaultTaxRate
		if rawTax[i] != 0 {
			d.Tax[i] = rawTax[i]
			if d.EBIT[i] != 0 {
				rate = rawTax[i] / d.EBIT[i]
			}
		} else {
			d.Tax[i] = e.policy.DefaultTaxRate * d.EBIT[i]
			defaultTaxUsed = true
		}
		if rate < 0 {
			rate = 0
		}
		if rate > e.policy.MaxEffectiveTaxRate {
			rate = e.policy.MaxEffectiveTaxRate
		}
		d.TaxRate[i] = rate

		// 4. NOPAT.
		d.NOPAT[i] = d.EBIT[i] * (1 - rate)
	}
	if expenseSplitUsed {
		d.Notes = append(d.Notes, models.DerivationNote{Field: "cogs", Method: "total_expense_split"})
	} else {
		d.Notes = append(d.Notes, models.DerivationNote{Field: "cogs", Method: "revenue_ratio"})
	}
	if defaultTaxUsed {
		d.Notes = append(d.Notes, models.DerivationNote{Field: "tax", Method: "default_rate"})
	}

	e.deriveBalanceSheet(d, raw, pad)

	log.Printf("[Derive] %d periods derived (nbfc=%v, notes=%d)", n, d.IsNBFC, len(d.Notes))
	return d, nil
}

// deriveBalanceSheet fills the balance-sheet side: equity aggregation, the
// fixed debt split, and the working-capital proxies.
func (e *Engine) deriveBalanceSheet(d *models.DerivedFinancials, raw *models.RawFinancialTable, pad func(models.PeriodSeries) models.PeriodSeries) {
	n := e.policy.HistoricalPeriods

	equityCapital := pad(raw.EquityCapital)
	reserves := pad(raw.Reserves)
	borrowings := pad(raw.Borrowings)
	inventory := pad(raw.Inventory)
	receivables := pad(raw.Receivables)
	payables := pad(raw.Payables)
	cash := pad(raw.Cash)
	otherAssets := pad(raw.OtherAssets)
	otherLiabs := pad(raw.OtherLiabilities)

	for i := 0; i < n; i++ {
		d.Equity[i] = equityCapital[i] + reserves[i]
		d.STDebt[i] = e.policy.ShortTermDebtShare * borrowings[i]
		d.LTDebt[i] = borrowings[i] - d.STDebt[i]
	}

	fill := func(dst models.PeriodSeries, src, bucket models.PeriodSeries, share float64, field string) {
		if !src.IsZero() {
			copy(dst, src)
			return
		}
		if bucket.IsZero() {
			return
		}
		for i := 0; i < n; i++ {
			dst[i] = share * bucket[i]
		}
		d.Notes = append(d.Notes, models.DerivationNote{Field: field, Method: "bucket_share"})
	}
	fill(d.Inventory, inventory, otherAssets, e.policy.OtherAssetsInventoryShare, "inventory")
	fill(d.Receivables, receivables, otherAssets, e.policy.OtherAssetsReceivablesShare, "receivables")
	fill(d.Cash, cash, otherAssets, e.policy.OtherAssetsCashShare, "cash")
	fill(d.Payables, payables, otherLiabs, e.policy.OtherLiabsPayablesShare, "payables")
}
