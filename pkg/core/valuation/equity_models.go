package valuation

import (
	"math"

	"equitylens/pkg/core/assumption"
	"equitylens/pkg/models"
)

// EquityModelInput holds inputs shared by the equity-side models (DDM, RIM).
// Earnings and book value are per-share absolute figures.
type EquityModelInput struct {
	EarningsPerShare  float64 // Base year, absolute currency per share
	BookValuePerShare float64 // B_0
	CostOfEquity      float64 // Ke
	GrowthRate        float64 // Explicit-horizon earnings growth
	TerminalGrowth    float64 // g
	PayoutRatio       float64
	ForecastYears     int
}

// EquityValuationResult holds one equity model's outputs.
type EquityValuationResult struct {
	SharePrice    float64
	PVStream      float64 // PV of dividends / residual income
	PVTerminal    float64
	TerminalValue float64
	Valid         bool
}

// CalculateDDM values the share as the present value of the projected
// dividend stream plus a Gordon-growth terminal value.
//
//	D_t = payout * E_t, E_t grown at the explicit rate
func CalculateDDM(input EquityModelInput) EquityValuationResult {
	if input.EarningsPerShare <= 0 || input.ForecastYears < 1 {
		return EquityValuationResult{}
	}

	var pvDivs float64
	eps := input.EarningsPerShare
	lastDiv := 0.0
	for i := 0; i < input.ForecastYears; i++ {
		eps *= 1 + input.GrowthRate
		div := input.PayoutRatio * eps
		pvDivs += div / math.Pow(1+input.CostOfEquity, float64(i+1))
		lastDiv = div
	}

	terminalVal := 0.0
	if input.CostOfEquity > input.TerminalGrowth {
		terminalVal = lastDiv * (1 + input.TerminalGrowth) / (input.CostOfEquity - input.TerminalGrowth)
	}
	pvTerminal := terminalVal / math.Pow(1+input.CostOfEquity, float64(input.ForecastYears))

	return EquityValuationResult{
		SharePrice:    pvDivs + pvTerminal,
		PVStream:      pvDivs,
		PVTerminal:    pvTerminal,
		TerminalValue: terminalVal,
		Valid:         pvDivs+pvTerminal > 0,
	}
}

// CalculateResidualIncome values the share as current book value plus the
// present value of residual income.
//
//	RI_t = E_t - Ke * B_{t-1}
//	B_t  = B_{t-1} + E_t - D_t
func CalculateResidualIncome(input EquityModelInput) EquityValuationResult {
	if input.BookValuePerShare <= 0 || input.ForecastYears < 1 {
		return EquityValuationResult{}
	}

	var pvRI float64
	eps := input.EarningsPerShare
	book := input.BookValuePerShare
	lastRI := 0.0
	for i := 0; i < input.ForecastYears; i++ {
		eps *= 1 + input.GrowthRate
		ri := eps - input.CostOfEquity*book
		pvRI += ri / math.Pow(1+input.CostOfEquity, float64(i+1))
		lastRI = ri
		book += eps - input.PayoutRatio*eps
	}

	terminalVal := 0.0
	if input.CostOfEquity > input.TerminalGrowth {
		terminalVal = lastRI * (1 + input.TerminalGrowth) / (input.CostOfEquity - input.TerminalGrowth)
	}
	pvTerminal := terminalVal / math.Pow(1+input.CostOfEquity, float64(input.ForecastYears))

	price := input.BookValuePerShare + pvRI + pvTerminal
	return EquityValuationResult{
		SharePrice:    price,
		PVStream:      pvRI,
		PVTerminal:    pvTerminal,
		TerminalValue: terminalVal,
		Valid:         price > 0,
	}
}

// EquityInputFrom builds the per-share model input from derived financials
// and a resolved share count. Returns false when shares are unresolved.
func EquityInputFrom(d *models.DerivedFinancials, sc models.ShareCount, a assumption.DiscountAssumptions, unitScale float64) (EquityModelInput, bool) {
	if !sc.Resolved() {
		return EquityModelInput{}, false
	}
	ke := a.RiskFreeRate + a.Beta*(a.MarketReturn-a.RiskFreeRate)
	return EquityModelInput{
		EarningsPerShare:  d.NOPAT.Latest() * unitScale / sc.Value,
		BookValuePerShare: d.Equity.Latest() * unitScale / sc.Value,
		CostOfEquity:      ke,
		GrowthRate:        a.GrowthRate,
		TerminalGrowth:    a.TerminalGrowth,
		PayoutRatio:       a.PayoutRatio,
		ForecastYears:     a.ForecastYears,
	}, true
}
