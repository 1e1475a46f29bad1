// Package models defines the shared financial schema passed between the
// ingestion collaborators, the derivation core, and the presentation layer.
package models

// PeriodSeries is an ordered sequence of per-period values, oldest first.
// Absent data is an explicit 0.0 entry, never a gap; after normalization the
// length always equals the configured historical window.
type PeriodSeries []float64

// Sum returns the total across all periods.
func (s PeriodSeries) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// IsEmpty reports whether the series carries no entries at all.
func (s PeriodSeries) IsEmpty() bool {
	return len(s) == 0
}

// IsZero reports whether every entry is exactly zero (or the series is empty).
func (s PeriodSeries) IsZero() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// Latest returns the most recent entry, or 0 for an empty series.
func (s PeriodSeries) Latest() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Clone returns an independent copy of the series.
func (s PeriodSeries) Clone() PeriodSeries {
	out := make(PeriodSeries, len(s))
	copy(out, s)
	return out
}

// StatementRow is one line of a parsed statement table: a label cell followed
// by per-period value cells, oldest first. Cells are kept as raw strings; the
// extractor owns numeric interpretation.
type StatementRow struct {
	Label string   `json:"label"`
	Cells []string `json:"cells"`
}

// StatementTable is the tabular form both ingestion collaborators (HTML
// scraper, spreadsheet parser) produce. The core treats both identically.
type StatementTable struct {
	Rows []StatementRow `json:"rows"`
}

// StatementBundle groups the statement tables for one company fetch.
type StatementBundle struct {
	Ticker       string         `json:"ticker"`
	CompanyName  string         `json:"company_name"`
	PeriodLabels []string       `json:"period_labels"` // Oldest first, may be shorter than the tables
	ProfitLoss   StatementTable `json:"profit_loss"`
	BalanceSheet StatementTable `json:"balance_sheet"`
	SourceUnit   SourceUnit     `json:"source_unit"`
}

// SourceUnit identifies the monetary unit of the upstream tables.
type SourceUnit string

const (
	UnitCrore    SourceUnit = "crore"    // 1e7-unit blocks (source default)
	UnitLakh     SourceUnit = "lakh"     // 1e5-unit blocks
	UnitMillion  SourceUnit = "million"  // 1e6-unit blocks
	UnitThousand SourceUnit = "thousand" // 1e3-unit blocks
)

// RawFinancialTable holds the resolved line items the derivation engine
// consumes. Series are still in the source unit and may have heterogeneous
// lengths; padding and conversion happen inside the engine. Built once per
// ingestion, discarded after derivation.
type RawFinancialTable struct {
	// Profit and loss
	Revenue         PeriodSeries
	OperatingProfit PeriodSeries
	ProfitBeforeTax PeriodSeries
	Interest        PeriodSeries
	InterestIncome  PeriodSeries
	Depreciation    PeriodSeries
	Tax             PeriodSeries
	TotalExpenses   PeriodSeries
	NetProfit       PeriodSeries
	EPS             PeriodSeries

	// Balance sheet
	EquityCapital    PeriodSeries
	Reserves         PeriodSeries
	Borrowings       PeriodSeries
	FixedAssets      PeriodSeries
	Inventory        PeriodSeries
	Receivables      PeriodSeries
	Payables         PeriodSeries
	Cash             PeriodSeries
	Investments      PeriodSeries
	OtherAssets      PeriodSeries
	OtherLiabilities PeriodSeries

	// IsNBFC is set when receivables resolved via the loans-and-advances
	// proxy, a non-banking-financial-company balance sheet signal.
	IsNBFC bool
}

// DerivedFinancials is the canonical valuation-ready schema. Every field has
// exactly N entries ordered oldest first; immutable after construction.
type DerivedFinancials struct {
	PeriodLabels []string `json:"period_labels"`

	Revenue        PeriodSeries `json:"revenue"`
	COGS           PeriodSeries `json:"cogs"`
	Opex           PeriodSeries `json:"opex"`
	EBITDA         PeriodSeries `json:"ebitda"`
	Depreciation   PeriodSeries `json:"depreciation"`
	EBIT           PeriodSeries `json:"ebit"`
	Interest       PeriodSeries `json:"interest"`
	InterestIncome PeriodSeries `json:"interest_income"`
	Tax            PeriodSeries `json:"tax"`
	TaxRate        PeriodSeries `json:"tax_rate"` // Effective rate per period, clamped
	NOPAT          PeriodSeries `json:"nopat"`

	FixedAssets PeriodSeries `json:"fixed_assets"`
	Inventory   PeriodSeries `json:"inventory"`
	Receivables PeriodSeries `json:"receivables"`
	Payables    PeriodSeries `json:"payables"`
	Cash        PeriodSeries `json:"cash"`
	Equity      PeriodSeries `json:"equity"`
	STDebt      PeriodSeries `json:"st_debt"`
	LTDebt      PeriodSeries `json:"lt_debt"`

	// Notes record which fields were produced by estimation fallbacks so the
	// presentation layer can distinguish "computed as zero" from "measured".
	Notes []DerivationNote `json:"notes,omitempty"`

	IsNBFC bool `json:"is_nbfc"`
}

// DerivationNote flags a field produced by a heuristic rather than source data.
type DerivationNote struct {
	Field  string `json:"field"`
	Method string `json:"method"`
}

// ShareCount is the resolved shares-outstanding figure with provenance.
type ShareCount struct {
	Value      float64         `json:"value"`
	Provenance ShareProvenance `json:"provenance"`
}

// ShareProvenance identifies which derivation produced the share count.
type ShareProvenance string

const (
	SharesFromEPS      ShareProvenance = "eps_ratio"
	SharesFromParValue ShareProvenance = "equity_par_value"
	SharesFromLookup   ShareProvenance = "external_lookup"
	SharesUnresolved   ShareProvenance = "unresolved"
)

// Resolved reports whether a usable share count is available.
func (s ShareCount) Resolved() bool {
	return s.Value > 0 && s.Provenance != SharesUnresolved
}

// Quote is the optional market-data lookup supplied by an external collaborator.
type Quote struct {
	Price             float64 `json:"price"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Beta              float64 `json:"beta"`
	MarketCap         float64 `json:"market_cap"`
}

// PeerMultiples holds one comparable company's trading multiples. Implausible
// entries are filtered by the relative-valuation calculator, not here.
type PeerMultiples struct {
	Name     string  `json:"name"`
	PE       float64 `json:"pe"`
	PB       float64 `json:"pb"`
	EVEBITDA float64 `json:"ev_ebitda"`
	PS       float64 `json:"ps"`
}

// MethodResult is one valuation model's output. Valid is false when inputs
// were insufficient; FairValue is then meaningless and must not be averaged.
type MethodResult struct {
	Method    string  `json:"method"`
	FairValue float64 `json:"fair_value"`
	Valid     bool    `json:"valid"`
	Note      string  `json:"note,omitempty"`
}

// WACCBreakdown exposes the discount-rate components for display.
type WACCBreakdown struct {
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // After tax
	WeightEquity float64 `json:"weight_equity"`
	WeightDebt   float64 `json:"weight_debt"`
	WACC         float64 `json:"wacc"`
}

// ValuationResult aggregates every model's output plus shared intermediates.
// Immutable once produced.
type ValuationResult struct {
	Methods []MethodResult `json:"methods"`

	EnterpriseValue float64       `json:"enterprise_value"`
	EquityValue     float64       `json:"equity_value"`
	TerminalValue   float64       `json:"terminal_value"`
	WACC            WACCBreakdown `json:"wacc"`

	// TerminalValueFlagged is set when WACC <= terminal growth; terminal
	// value is forced to 0 and the DCF output should be presented with care.
	TerminalValueFlagged bool `json:"terminal_value_flagged"`

	// AggregateFairValue is the mean of valid method outputs; HasValuation is
	// false when no method produced a usable figure.
	AggregateFairValue float64 `json:"aggregate_fair_value"`
	HasValuation       bool    `json:"has_valuation"`
}
