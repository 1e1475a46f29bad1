package derive

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"equitylens/pkg/models"
)

func newTestEngine(t *testing.T, periods int) *Engine {
	t.Helper()
	p := DefaultPolicy()
	p.HistoricalPeriods = periods
	e, err := NewEngine(p)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func almostEqual(a, b models.PeriodSeries) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestDeriveDirectOperatingProfit(t *testing.T) {
	e := newTestEngine(t, 3)
	raw := &models.RawFinancialTable{
		Revenue:         models.PeriodSeries{1000, 1100, 1200},
		OperatingProfit: models.PeriodSeries{200, 220, 240},
		Depreciation:    models.PeriodSeries{50, 55, 60},
	}
	d, err := e.Derive(raw, []string{"2022", "2023", "2024"}, models.UnitCrore)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	// Direct line: ebit = operating profit, ebitda = ebit + depreciation.
	if want := (models.PeriodSeries{200, 220, 240}); !almostEqual(d.EBIT, want) {
		t.Errorf("EBIT: expected %v, got %v", want, d.EBIT)
	}
	if want := (models.PeriodSeries{250, 275, 300}); !almostEqual(d.EBITDA, want) {
		t.Errorf("EBITDA: expected %v, got %v", want, d.EBITDA)
	}
	// cogs = 0.55 * revenue; opex = revenue - cogs - ebitda
	// period 0: cogs = 550, opex = 1000 - 550 - 250 = 200
	if want := (models.PeriodSeries{550, 605, 660}); !almostEqual(d.COGS, want) {
		t.Errorf("COGS: expected %v, got %v", want, d.COGS)
	}
	if want := (models.PeriodSeries{200, 220, 240}); !almostEqual(d.Opex, want) {
		t.Errorf("Opex: expected %v, got %v", want, d.Opex)
	}
	// No tax line: tax = 0.25 * ebit, nopat = ebit * 0.75.
	if want := (models.PeriodSeries{150, 165, 180}); !almostEqual(d.NOPAT, want) {
		t.Errorf("NOPAT: expected %v, got %v", want, d.NOPAT)
	}
	if !reflect.DeepEqual(d.PeriodLabels, []string{"2022", "2023", "2024"}) {
		t.Errorf("unexpected period labels %v", d.PeriodLabels)
	}
}

func TestDeriveProfitProxyFromPBT(t *testing.T) {
	e := newTestEngine(t, 2)
	raw := &models.RawFinancialTable{
		Revenue:         models.PeriodSeries{1000, 1100},
		ProfitBeforeTax: models.PeriodSeries{150, 160},
		Interest:        models.PeriodSeries{30, 35},
		Depreciation:    models.PeriodSeries{50, 55},
	}
	d, err := e.Derive(raw, nil, models.UnitCrore)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	// ebitda = pbt + interest + depreciation = [230, 250]
	// ebit = ebitda - depreciation = [180, 195]
	if want := (models.PeriodSeries{230, 250}); !almostEqual(d.EBITDA, want) {
		t.Errorf("EBITDA: expected %v, got %v", want, d.EBITDA)
	}
	if want := (models.PeriodSeries{180, 195}); !almostEqual(d.EBIT, want) {
		t.Errorf("EBIT: expected %v, got %v", want, d.EBIT)
	}
	if !hasNote(d.Notes, "ebit", "pbt_interest_depreciation") {
		t.Errorf("Expected proxy derivation note, got %v", d.Notes)
	}
}

func TestDeriveEBITDAIdentityHoldsOnBothPaths(t *testing.T) {
	e := newTestEngine(t, 3)
	inputs := []*models.RawFinancialTable{
		{
			Revenue:         models.PeriodSeries{500, 600, 700},
			OperatingProfit: models.PeriodSeries{90, 110, 120},
			Depreciation:    models.PeriodSeries{20, 22, 24},
		},
		{
			Revenue:         models.PeriodSeries{500, 600, 700},
			ProfitBeforeTax: models.PeriodSeries{60, 75, 85},
			Interest:        models.PeriodSeries{10, 12, 11},
			Depreciation:    models.PeriodSeries{20, 22, 24},
		},
	}
	for _, raw := range inputs {
		d, err := e.Derive(raw, nil, models.UnitCrore)
		if err != nil {
			t.Fatalf("Derive: %v", err)
		}
		for i := range d.EBITDA {
			if math.Abs(d.EBITDA[i]-(d.EBIT[i]+d.Depreciation[i])) > 1e-9 {
				t.Errorf("period %d: ebitda %v != ebit %v + depreciation %v",
					i, d.EBITDA[i], d.EBIT[i], d.Depreciation[i])
			}
		}
	}
}

func TestDeriveUnresolvableWithoutRevenue(t *testing.T) {
	e := newTestEngine(t, 3)
	raw := &models.RawFinancialTable{
		OperatingProfit: models.PeriodSeries{10, 20, 30},
	}
	_, err := e.Derive(raw, nil, models.UnitCrore)
	if !errors.Is(err, ErrUnresolvableCompany) {
		t.Errorf("Expected ErrUnresolvableCompany, got %v", err)
	}
}

func TestDeriveTaxRateClamp(t *testing.T) {
	e := newTestEngine(t, 2)

	// Reported tax of 50 against ebit of 100 implies a 0.5 rate; the clamp
	// caps it at 0.35. The second period reports negative tax, clamped to 0.
	raw := &models.RawFinancialTable{
		Revenue:         models.PeriodSeries{400, 400},
		OperatingProfit: models.PeriodSeries{100, 100},
		Tax:             models.PeriodSeries{50, -10},
	}
	d, err := e.Derive(raw, nil, models.UnitCrore)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if want := (models.PeriodSeries{0.35, 0}); !almostEqual(d.TaxRate, want) {
		t.Errorf("TaxRate: expected %v, got %v", want, d.TaxRate)
	}
	// nopat = ebit * (1 - rate): [65, 100]
	if want := (models.PeriodSeries{65, 100}); !almostEqual(d.NOPAT, want) {
		t.Errorf("NOPAT: expected %v, got %v", want, d.NOPAT)
	}
}

func TestDeriveTotalExpenseFallback(t *testing.T) {
	e := newTestEngine(t, 2)
	// revenue 100, ebitda 80: cogs = 55 leaves opex = 100-55-80 = -35 < 0,
	// so the total-expenses split takes over: cogs = 0.65*20 = 13, opex = 7.
	raw := &models.RawFinancialTable{
		Revenue:         models.PeriodSeries{100, 100},
		OperatingProfit: models.PeriodSeries{80, 80},
		TotalExpenses:   models.PeriodSeries{20, 20},
	}
	d, err := e.Derive(raw, nil, models.UnitCrore)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if want := (models.PeriodSeries{13, 13}); !almostEqual(d.COGS, want) {
		t.Errorf("COGS: expected %v, got %v", want, d.COGS)
	}
	if want := (models.PeriodSeries{7, 7}); !almostEqual(d.Opex, want) {
		t.Errorf("Opex: expected %v, got %v", want, d.Opex)
	}
	if !hasNote(d.Notes, "cogs", "total_expense_split") {
		t.Errorf("Expected total_expense_split note, got %v", d.Notes)
	}
}

func TestDeriveBalanceSheet(t *testing.T) {
	e := newTestEngine(t, 2)
	raw := &models.RawFinancialTable{
		Revenue:          models.PeriodSeries{1000, 1000},
		OperatingProfit:  models.PeriodSeries{100, 100},
		EquityCapital:    models.PeriodSeries{50, 50},
		Reserves:         models.PeriodSeries{450, 500},
		Borrowings:       models.PeriodSeries{200, 300},
		OtherAssets:      models.PeriodSeries{100, 100},
		OtherLiabilities: models.PeriodSeries{50, 50},
	}
	d, err := e.Derive(raw, nil, models.UnitCrore)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	if want := (models.PeriodSeries{500, 550}); !almostEqual(d.Equity, want) {
		t.Errorf("Equity: expected %v, got %v", want, d.Equity)
	}
	// 30/70 split of borrowings.
	if want := (models.PeriodSeries{60, 90}); !almostEqual(d.STDebt, want) {
		t.Errorf("STDebt: expected %v, got %v", want, d.STDebt)
	}
	if want := (models.PeriodSeries{140, 210}); !almostEqual(d.LTDebt, want) {
		t.Errorf("LTDebt: expected %v, got %v", want, d.LTDebt)
	}
	// Working-capital proxies: 20/30/20 shares of other assets, 40% of other
	// liabilities for payables.
	if want := (models.PeriodSeries{20, 20}); !almostEqual(d.Inventory, want) {
		t.Errorf("Inventory: expected %v, got %v", want, d.Inventory)
	}
	if want := (models.PeriodSeries{30, 30}); !almostEqual(d.Receivables, want) {
		t.Errorf("Receivables: expected %v, got %v", want, d.Receivables)
	}
	if want := (models.PeriodSeries{20, 20}); !almostEqual(d.Cash, want) {
		t.Errorf("Cash: expected %v, got %v", want, d.Cash)
	}
	if want := (models.PeriodSeries{20, 20}); !almostEqual(d.Payables, want) {
		t.Errorf("Payables: expected %v, got %v", want, d.Payables)
	}
	if !hasNote(d.Notes, "receivables", "bucket_share") {
		t.Errorf("Expected bucket_share note for receivables, got %v", d.Notes)
	}
}

func TestDeriveConvertsSourceUnit(t *testing.T) {
	e := newTestEngine(t, 2)
	// 100 lakh = 1 internal unit.
	raw := &models.RawFinancialTable{
		Revenue:         models.PeriodSeries{10000, 20000},
		OperatingProfit: models.PeriodSeries{1000, 2000},
	}
	d, err := e.Derive(raw, nil, models.UnitLakh)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if want := (models.PeriodSeries{100, 200}); !almostEqual(d.Revenue, want) {
		t.Errorf("Revenue: expected %v, got %v", want, d.Revenue)
	}
	if want := (models.PeriodSeries{10, 20}); !almostEqual(d.EBIT, want) {
		t.Errorf("EBIT: expected %v, got %v", want, d.EBIT)
	}
}

func TestDerivePadsShortHistory(t *testing.T) {
	e := newTestEngine(t, 5)
	raw := &models.RawFinancialTable{
		Revenue:         models.PeriodSeries{1000, 1100},
		OperatingProfit: models.PeriodSeries{200, 220},
	}
	d, err := e.Derive(raw, []string{"2023", "2024"}, models.UnitCrore)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if len(d.Revenue) != 5 || len(d.NOPAT) != 5 || len(d.Equity) != 5 {
		t.Fatalf("Expected all series padded to 5 periods")
	}
	if want := (models.PeriodSeries{0, 0, 0, 1000, 1100}); !almostEqual(d.Revenue, want) {
		t.Errorf("Revenue: expected %v, got %v", want, d.Revenue)
	}
}

func TestPolicyValidate(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Errorf("Default policy must validate, got %v", err)
	}

	p = DefaultPolicy()
	p.HistoricalPeriods = 1
	if _, err := NewEngine(p); err == nil {
		t.Errorf("Expected error for window below 2")
	}
	p.HistoricalPeriods = 11
	if _, err := NewEngine(p); err == nil {
		t.Errorf("Expected error for window above 10")
	}

	p = DefaultPolicy()
	p.COGSRevenueRatio = 1.5
	if err := p.Validate(); err == nil {
		t.Errorf("Expected error for ratio above 1")
	}
	p = DefaultPolicy()
	p.UnitScale = 0
	if err := p.Validate(); err == nil {
		t.Errorf("Expected error for zero unit scale")
	}
}

func hasNote(notes []models.DerivationNote, field, method string) bool {
	for _, n := range notes {
		if n.Field == field && n.Method == method {
			return true
		}
	}
	return false
}
