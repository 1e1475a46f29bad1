package valuation

import (
	"equitylens/pkg/core/assumption"
	"equitylens/pkg/core/projection"
	"equitylens/pkg/models"
)

// RunAll executes every valuation model against the derived financials and
// aggregates the fair value as the arithmetic mean of the valid methods. Any
// subset of methods may be unavailable; with none, HasValuation is false.
func RunAll(d *models.DerivedFinancials, sc models.ShareCount, peers []models.PeerMultiples, a assumption.DiscountAssumptions, unitScale float64) *models.ValuationResult {
	wacc := CalculateWACC(a, d)
	netDebt := d.STDebt.Latest() + d.LTDebt.Latest() - d.Cash.Latest()

	out := &models.ValuationResult{WACC: wacc}

	// DCF over the projected FCF series.
	dcf := CalculateDCF(DCFInput{
		FCF:            projection.ProjectFCF(d, a),
		WACC:           wacc.WACC,
		TerminalGrowth: a.TerminalGrowth,
		NetDebt:        netDebt,
		Shares:         sc.Value,
		UnitScale:      unitScale,
	})
	out.EnterpriseValue = dcf.EnterpriseValue
	out.EquityValue = dcf.EquityValue
	out.TerminalValue = dcf.TerminalValue
	out.TerminalValueFlagged = dcf.TerminalFlagged

	dcfMethod := models.MethodResult{Method: "dcf", FairValue: dcf.SharePrice}
	switch {
	case dcf.TerminalFlagged:
		// An ambiguous terminal value is recoverable but must be surfaced,
		// not averaged into the aggregate as if it were well-defined.
		dcfMethod.Note = "terminal value undefined: wacc <= terminal growth"
	case !sc.Resolved():
		dcfMethod.Note = "share count unresolved"
	case dcf.SharePrice > 0:
		dcfMethod.Valid = true
	}
	out.Methods = append(out.Methods, dcfMethod)

	// Equity-side models need a resolved share count.
	if eqInput, ok := EquityInputFrom(d, sc, a, unitScale); ok {
		ddm := CalculateDDM(eqInput)
		out.Methods = append(out.Methods, models.MethodResult{
			Method: "ddm", FairValue: ddm.SharePrice, Valid: ddm.Valid,
		})
		rim := CalculateResidualIncome(eqInput)
		out.Methods = append(out.Methods, models.MethodResult{
			Method: "rim", FairValue: rim.SharePrice, Valid: rim.Valid,
		})
	} else {
		out.Methods = append(out.Methods,
			models.MethodResult{Method: "ddm", Note: "share count unresolved"},
			models.MethodResult{Method: "rim", Note: "share count unresolved"},
		)
	}

	// Relative valuation against the peer set.
	rel := CalculateRelative(RelativeInput{
		Derived:   d,
		Shares:    sc,
		Peers:     peers,
		NetDebt:   netDebt,
		UnitScale: unitScale,
	})
	out.Methods = append(out.Methods, rel.PE, rel.PB, rel.EVEBITDA, rel.PS)

	var sum float64
	var valid int
	for _, m := range out.Methods {
		if m.Valid {
			sum += m.FairValue
			valid++
		}
	}
	if valid > 0 {
		out.AggregateFairValue = sum / float64(valid)
		out.HasValuation = true
	}
	return out
}
