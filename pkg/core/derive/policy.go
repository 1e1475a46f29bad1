package derive

import "fmt"

// Policy collects every estimation constant the derivation pipeline uses.
// The source data rarely itemizes these figures, so the ratios below are
// documented approximations, not measured facts. Tests override them here
// rather than patching magic numbers.
type Policy struct {
	// HistoricalPeriods is the fixed window N every series is aligned to.
	HistoricalPeriods int

	// COGSRevenueRatio allocates cost of goods sold from revenue when the
	// source does not itemize COGS vs operating expenses.
	COGSRevenueRatio float64

	// TotalExpenseCOGSShare splits a total-expenses line into COGS when the
	// revenue-ratio allocation yields a negative opex. Opex takes the rest.
	TotalExpenseCOGSShare float64

	// DefaultTaxRate substitutes for a missing or zero tax line.
	DefaultTaxRate float64

	// MaxEffectiveTaxRate clamps the effective rate used for NOPAT.
	MaxEffectiveTaxRate float64

	// ShortTermDebtShare splits total borrowings; long-term takes the rest.
	// No source data justifies a per-company split.
	ShortTermDebtShare float64

	// Working-capital proxies as shares of the aggregated "other assets"
	// and "other liabilities" buckets, used only when the balance sheet does
	// not itemize the field.
	OtherAssetsInventoryShare   float64
	OtherAssetsReceivablesShare float64
	OtherAssetsCashShare        float64
	OtherLiabsPayablesShare     float64

	// AssumedParValue backs the share-count fallback from equity capital.
	AssumedParValue float64

	// UnitScale converts one internal reporting unit into absolute currency
	// units (the source reports in 1e7-unit blocks).
	UnitScale float64
}

// DefaultPolicy returns the canonical constant set. The 0.55 revenue ratio
// and 65/35 expense split were chosen as the authoritative variant among the
// near-duplicate upstream parsers.
func DefaultPolicy() Policy {
	return Policy{
		HistoricalPeriods:           5,
		COGSRevenueRatio:            0.55,
		TotalExpenseCOGSShare:       0.65,
		DefaultTaxRate:              0.25,
		MaxEffectiveTaxRate:         0.35,
		ShortTermDebtShare:          0.30,
		OtherAssetsInventoryShare:   0.20,
		OtherAssetsReceivablesShare: 0.30,
		OtherAssetsCashShare:        0.20,
		OtherLiabsPayablesShare:     0.40,
		AssumedParValue:             10,
		UnitScale:                   1e7,
	}
}

// Validate checks the programming contract on the policy. Data-quality
// problems never surface here; this guards caller mistakes only.
func (p Policy) Validate() error {
	if p.HistoricalPeriods < 2 || p.HistoricalPeriods > 10 {
		return fmt.Errorf("policy: historical periods must be in [2,10], got %d", p.HistoricalPeriods)
	}
	if p.COGSRevenueRatio < 0 || p.COGSRevenueRatio > 1 {
		return fmt.Errorf("policy: cogs revenue ratio must be in [0,1], got %f", p.COGSRevenueRatio)
	}
	if p.TotalExpenseCOGSShare < 0 || p.TotalExpenseCOGSShare > 1 {
		return fmt.Errorf("policy: total expense cogs share must be in [0,1], got %f", p.TotalExpenseCOGSShare)
	}
	if p.MaxEffectiveTaxRate < 0 || p.MaxEffectiveTaxRate > 1 {
		return fmt.Errorf("policy: max effective tax rate must be in [0,1], got %f", p.MaxEffectiveTaxRate)
	}
	if p.ShortTermDebtShare < 0 || p.ShortTermDebtShare > 1 {
		return fmt.Errorf("policy: short term debt share must be in [0,1], got %f", p.ShortTermDebtShare)
	}
	if p.AssumedParValue <= 0 {
		return fmt.Errorf("policy: assumed par value must be positive, got %f", p.AssumedParValue)
	}
	if p.UnitScale <= 0 {
		return fmt.Errorf("policy: unit scale must be positive, got %f", p.UnitScale)
	}
	return nil
}
