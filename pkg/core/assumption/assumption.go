// Package assumption holds the discount-rate and projection inputs the
// valuation models consume. Assumption files are analyst-edited, so they are
// read as HJSON (comments and trailing commas tolerated).
package assumption

import (
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"
)

// DiscountAssumptions is the caller-supplied configuration for a valuation
// run. Rates are decimals (0.07 = 7%).
type DiscountAssumptions struct {
	RiskFreeRate   float64 `json:"risk_free_rate"`
	MarketReturn   float64 `json:"market_return"`
	Beta           float64 `json:"beta"`
	CostOfDebt     float64 `json:"cost_of_debt"` // Pre-tax
	TaxRate        float64 `json:"tax_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`
	GrowthRate     float64 `json:"growth_rate"`  // Explicit-horizon FCF growth
	PayoutRatio    float64 `json:"payout_ratio"` // Dividend share of earnings
	ForecastYears  int     `json:"forecast_years"`
}

// Defaults returns a conservative baseline assumption set.
func Defaults() DiscountAssumptions {
	return DiscountAssumptions{
		RiskFreeRate:   0.07,
		MarketReturn:   0.12,
		Beta:           1.0,
		CostOfDebt:     0.09,
		TaxRate:        0.25,
		TerminalGrowth: 0.03,
		GrowthRate:     0.08,
		PayoutRatio:    0.30,
		ForecastYears:  5,
	}
}

// LoadFile reads an HJSON assumption file, layering it over Defaults so a
// partial file is valid.
func LoadFile(path string) (DiscountAssumptions, error) {
	out := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("assumption: read %s: %w", path, err)
	}
	if err := hjson.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("assumption: parse %s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// Validate guards the programming contract on assumption inputs.
func (a DiscountAssumptions) Validate() error {
	if a.ForecastYears < 1 {
		return fmt.Errorf("assumption: forecast years must be positive, got %d", a.ForecastYears)
	}
	if a.TaxRate < 0 || a.TaxRate > 1 {
		return fmt.Errorf("assumption: tax rate must be in [0,1], got %f", a.TaxRate)
	}
	return nil
}
