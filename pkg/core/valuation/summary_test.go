package valuation

import (
	"math"
	"testing"

	"equitylens/pkg/core/assumption"
	"equitylens/pkg/models"
)

func summaryFixture() *models.DerivedFinancials {
	return &models.DerivedFinancials{
		Revenue:      models.PeriodSeries{900, 1000},
		NOPAT:        models.PeriodSeries{90, 100},
		EBITDA:       models.PeriodSeries{180, 200},
		Depreciation: models.PeriodSeries{20, 20},
		FixedAssets:  models.PeriodSeries{100, 110},
		Inventory:    models.PeriodSeries{50, 55},
		Receivables:  models.PeriodSeries{60, 66},
		Payables:     models.PeriodSeries{30, 33},
		Cash:         models.PeriodSeries{40, 50},
		Equity:       models.PeriodSeries{450, 500},
		STDebt:       models.PeriodSeries{30, 30},
		LTDebt:       models.PeriodSeries{70, 70},
	}
}

func TestCalculateWACC(t *testing.T) {
	// ke = 0.07 + 1.0*(0.12-0.07) = 0.12; kd = 0.09*(1-0.25) = 0.0675
	// debt = 100, equity = 500: we = 5/6, wd = 1/6
	// wacc = 0.12*5/6 + 0.0675*1/6 = 0.11125
	w := CalculateWACC(assumption.Defaults(), summaryFixture())
	if math.Abs(w.CostOfEquity-0.12) > 1e-9 {
		t.Errorf("CostOfEquity: expected 0.12, got %v", w.CostOfEquity)
	}
	if math.Abs(w.CostOfDebt-0.0675) > 1e-9 {
		t.Errorf("CostOfDebt: expected 0.0675, got %v", w.CostOfDebt)
	}
	if math.Abs(w.WACC-0.11125) > 1e-9 {
		t.Errorf("WACC: expected 0.11125, got %v", w.WACC)
	}
}

func TestCalculateWACCDefaultsToAllEquity(t *testing.T) {
	// No capital on the books: weight equity 1, wacc = ke.
	w := CalculateWACC(assumption.Defaults(), &models.DerivedFinancials{
		Equity: models.PeriodSeries{0},
		STDebt: models.PeriodSeries{0},
		LTDebt: models.PeriodSeries{0},
	})
	if w.WeightEquity != 1 || w.WeightDebt != 0 {
		t.Errorf("Expected all-equity weights, got we=%v wd=%v", w.WeightEquity, w.WeightDebt)
	}
	if math.Abs(w.WACC-w.CostOfEquity) > 1e-9 {
		t.Errorf("Expected wacc == ke, got %v vs %v", w.WACC, w.CostOfEquity)
	}
}

func TestRunAllAggregatesValidMethods(t *testing.T) {
	d := summaryFixture()
	sc := models.ShareCount{Value: 5e7, Provenance: models.SharesFromEPS}
	peers := []models.PeerMultiples{
		{Name: "PeerA", PE: 20, PB: 4, EVEBITDA: 8, PS: 2},
		{Name: "PeerB", PE: 24, PB: 5, EVEBITDA: 10, PS: 3},
	}

	res := RunAll(d, sc, peers, assumption.Defaults(), 1e7)

	if len(res.Methods) != 7 {
		t.Fatalf("Expected 7 methods (dcf, ddm, rim, pe, pb, ev_ebitda, ps), got %d", len(res.Methods))
	}
	if !res.HasValuation {
		t.Fatalf("Expected a valuation with resolved shares and plausible peers")
	}
	if res.TerminalValueFlagged {
		t.Errorf("Did not expect flagged terminal value at wacc %v", res.WACC.WACC)
	}

	// The aggregate is the arithmetic mean over the valid methods only.
	var sum float64
	var valid int
	for _, m := range res.Methods {
		if m.Valid {
			sum += m.FairValue
			valid++
		}
	}
	if valid == 0 {
		t.Fatalf("Expected at least one valid method")
	}
	if math.Abs(res.AggregateFairValue-sum/float64(valid)) > 1e-9 {
		t.Errorf("Aggregate: expected %v, got %v", sum/float64(valid), res.AggregateFairValue)
	}
}

func TestRunAllFlaggedTerminalExcludesDCF(t *testing.T) {
	a := assumption.Defaults()
	// Force wacc <= terminal growth.
	a.RiskFreeRate = 0.02
	a.MarketReturn = 0.02
	a.CostOfDebt = 0.02
	a.TaxRate = 0
	a.TerminalGrowth = 0.05

	sc := models.ShareCount{Value: 5e7, Provenance: models.SharesFromEPS}
	res := RunAll(summaryFixture(), sc, nil, a, 1e7)

	if !res.TerminalValueFlagged {
		t.Fatalf("Expected flagged terminal value at wacc %v <= g %v", res.WACC.WACC, a.TerminalGrowth)
	}
	if res.TerminalValue != 0 {
		t.Errorf("Expected terminal value 0, got %v", res.TerminalValue)
	}
	for _, m := range res.Methods {
		if m.Method != "dcf" {
			continue
		}
		if m.Valid {
			t.Errorf("Flagged DCF must be excluded from the aggregate")
		}
		if m.Note == "" {
			t.Errorf("Flagged DCF must carry an explanatory note")
		}
	}
}

func TestRunAllNoValuationAvailable(t *testing.T) {
	a := assumption.Defaults()
	a.RiskFreeRate = 0.02
	a.MarketReturn = 0.02
	a.CostOfDebt = 0.02
	a.TaxRate = 0
	a.TerminalGrowth = 0.05

	// Flagged DCF, unresolved shares, no peers: every method is invalid.
	sc := models.ShareCount{Provenance: models.SharesUnresolved}
	res := RunAll(summaryFixture(), sc, nil, a, 1e7)

	if res.HasValuation {
		t.Fatalf("Expected no valuation, got aggregate %v", res.AggregateFairValue)
	}
	if res.AggregateFairValue != 0 {
		t.Errorf("Expected zero aggregate without valid methods, got %v", res.AggregateFairValue)
	}
	for _, m := range res.Methods {
		if m.Valid {
			t.Errorf("Method %s: expected invalid", m.Method)
		}
	}
}
