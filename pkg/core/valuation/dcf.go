package valuation

import (
	"equitylens/pkg/models"
)

// DCFInput encapsulates all inputs required for a Discounted Cash Flow run.
type DCFInput struct {
	FCF            models.PeriodSeries // Projected free cash flows, year 1 first
	WACC           float64
	TerminalGrowth float64
	NetDebt        float64
	Shares         float64 // Absolute shares outstanding
	UnitScale      float64 // Internal reporting-unit blocks -> absolute currency
}

// DCFResult holds the valuation outputs.
type DCFResult struct {
	EnterpriseValue float64
	EquityValue     float64
	SharePrice      float64
	PVFCF           float64
	PVTerminal      float64
	TerminalValue   float64

	// TerminalFlagged is set when WACC <= terminal growth; the terminal
	// value is forced to 0 rather than computed negative or infinite.
	TerminalFlagged bool
}

// CalculateDCF performs a standard two-stage DCF analysis.
func CalculateDCF(input DCFInput) DCFResult {
	var pvFCF float64
	cumDiscountFactor := 1.0
	terminalFCF := 0.0

	for i, fcf := range input.FCF {
		cumDiscountFactor /= 1.0 + input.WACC
		pvFCF += fcf * cumDiscountFactor
		if i == len(input.FCF)-1 {
			terminalFCF = fcf
		}
	}

	// Terminal value via Gordon growth, defined only when WACC > g.
	tv := 0.0
	flagged := false
	if input.WACC > input.TerminalGrowth {
		tv = terminalFCF * (1 + input.TerminalGrowth) / (input.WACC - input.TerminalGrowth)
	} else {
		flagged = true
	}
	pvTerminal := tv * cumDiscountFactor

	ev := pvFCF + pvTerminal
	eqVal := ev - input.NetDebt

	sharePrice := 0.0
	if input.Shares > 0 {
		sharePrice = eqVal * input.UnitScale / input.Shares
	}

	return DCFResult{
		EnterpriseValue: ev,
		EquityValue:     eqVal,
		SharePrice:      sharePrice,
		PVFCF:           pvFCF,
		PVTerminal:      pvTerminal,
		TerminalValue:   tv,
		TerminalFlagged: flagged,
	}
}
