// Package resolve picks the best available series when several semantically
// overlapping line items could supply one concept.
package resolve

import (
	"equitylens/pkg/core/extract"
	"equitylens/pkg/models"
)

// Resolve returns the first candidate series that is non-empty and has a
// non-zero sum; otherwise an empty series. Candidate order is the fixed
// precedence policy, so the first non-trivial match always wins.
func Resolve(candidates ...models.PeriodSeries) models.PeriodSeries {
	for _, c := range candidates {
		if !c.IsEmpty() && c.Sum() != 0 {
			return c
		}
	}
	return models.PeriodSeries{}
}

// Keyword chains per concept. These precedence lists are policy and must stay
// stable: downstream estimation rules assume them.
var (
	revenueKeywords         = []string{"revenue", "sales", "income from operations"}
	operatingProfitKeywords = []string{"operating profit", "financing profit", "profit from operations"}
	pbtKeywords             = []string{"profit before tax"}
	interestKeywords        = []string{"interest", "finance cost"}
	interestIncomeKeywords  = []string{"other income", "interest income"}
	depreciationKeywords    = []string{"depreciation", "amortisation", "amortization"}
	// "tax" alone would hit the "profit before tax" row first in document
	// order, so the chain only carries labels the PBT row cannot contain.
	taxKeywords          = []string{"income tax", "tax expense", "taxes paid"}
	totalExpenseKeywords = []string{"total expenses", "expenses"}
	netProfitKeywords    = []string{"net profit", "profit after tax", "profit for the"}
	epsKeywords          = []string{"eps", "earning per share", "earnings per share"}

	equityCapitalKeywords = []string{"equity capital", "share capital", "equity share capital"}
	reservesKeywords      = []string{"reserves", "other equity"}
	borrowingsKeywords    = []string{"borrowings", "total debt", "debt"}
	fixedAssetsKeywords   = []string{"fixed assets", "net block", "property, plant"}
	inventoryKeywords     = []string{"inventory", "inventories", "stock-in-trade"}
	receivablesKeywords   = []string{"trade receivables", "receivables", "debtors"}
	loansAdvancesKeywords = []string{"loans & advances", "loans and advances", "loans"}
	payablesKeywords      = []string{"trade payables", "payables", "creditors"}
	advancesKeywords      = []string{"advances from customers", "advance from customers"}
	cashKeywords          = []string{"cash equivalents", "cash & bank", "cash and bank", "cash"}
	investmentsKeywords   = []string{"investments"}
	otherAssetsKeywords   = []string{"other assets", "other asset items"}
	otherLiabsKeywords    = []string{"other liabilities", "other liability items"}
)

// Resolver builds a RawFinancialTable from the statement tables by running
// the keyword chains through the extractor and applying the precedence
// policy per concept.
type Resolver struct {
	extractor *extract.Extractor
}

// NewResolver creates a resolver with the standard extractor.
func NewResolver() *Resolver {
	return &Resolver{extractor: extract.NewExtractor()}
}

// ResolveBundle extracts every canonical line item from the bundle's tables.
// Absent concepts come back as empty series; the derivation engine owns the
// substitution rules. Series are raw: not yet padded or unit-converted.
func (r *Resolver) ResolveBundle(bundle *models.StatementBundle) *models.RawFinancialTable {
	pl := bundle.ProfitLoss
	bs := bundle.BalanceSheet
	ex := r.extractor

	raw := &models.RawFinancialTable{
		Revenue:         ex.ExtractUsable(pl, revenueKeywords),
		OperatingProfit: ex.Extract(pl, operatingProfitKeywords),
		ProfitBeforeTax: ex.Extract(pl, pbtKeywords),
		Interest:        ex.Extract(pl, interestKeywords),
		InterestIncome:  ex.Extract(pl, interestIncomeKeywords),
		Depreciation:    ex.Extract(pl, depreciationKeywords),
		Tax:             ex.Extract(pl, taxKeywords),
		TotalExpenses:   ex.Extract(pl, totalExpenseKeywords),
		NetProfit:       ex.Extract(pl, netProfitKeywords),
		EPS:             ex.Extract(pl, epsKeywords),

		EquityCapital:    ex.Extract(bs, equityCapitalKeywords),
		Reserves:         ex.Extract(bs, reservesKeywords),
		Borrowings:       ex.Extract(bs, borrowingsKeywords),
		FixedAssets:      ex.Extract(bs, fixedAssetsKeywords),
		Inventory:        ex.ExtractUsable(bs, inventoryKeywords),
		Payables:         r.resolvePayables(bs),
		Cash:             ex.ExtractUsable(bs, cashKeywords),
		Investments:      ex.Extract(bs, investmentsKeywords),
		OtherAssets:      ex.Extract(bs, otherAssetsKeywords),
		OtherLiabilities: ex.Extract(bs, otherLiabsKeywords),
	}
	raw.Receivables, raw.IsNBFC = r.resolveReceivables(bs)
	return raw
}

// resolveReceivables applies the receivables chain: trade receivables first,
// then loans & advances as a proxy. Resolving via the proxy flags an
// NBFC-style balance sheet.
func (r *Resolver) resolveReceivables(bs models.StatementTable) (models.PeriodSeries, bool) {
	trade := r.extractor.ExtractUsable(bs, receivablesKeywords)
	if !trade.IsEmpty() && trade.Sum() != 0 {
		return trade, false
	}
	loans := r.extractor.ExtractUsable(bs, loansAdvancesKeywords)
	if !loans.IsEmpty() && loans.Sum() != 0 {
		return loans, true
	}
	return models.PeriodSeries{}, false
}

// resolvePayables applies the payables chain: trade payables, then advances
// from customers, then other liabilities.
func (r *Resolver) resolvePayables(bs models.StatementTable) models.PeriodSeries {
	return Resolve(
		r.extractor.ExtractUsable(bs, payablesKeywords),
		r.extractor.Extract(bs, advancesKeywords),
		r.extractor.Extract(bs, otherLiabsKeywords),
	)
}

// ResolveProfitProxy applies the profit chain: a resolved operating or
// financing profit line wins; otherwise the proxy is derived from profit
// before tax + interest + depreciation. The boolean reports whether the
// direct line was used.
func ResolveProfitProxy(operating, pbt, interest, depreciation models.PeriodSeries) (models.PeriodSeries, bool) {
	if !operating.IsEmpty() && operating.Sum() != 0 {
		return operating, true
	}
	n := len(pbt)
	if len(interest) > n {
		n = len(interest)
	}
	if len(depreciation) > n {
		n = len(depreciation)
	}
	derived := make(models.PeriodSeries, n)
	at := func(s models.PeriodSeries, i int) float64 {
		if i < len(s) {
			return s[i]
		}
		return 0
	}
	for i := 0; i < n; i++ {
		derived[i] = at(pbt, i) + at(interest, i) + at(depreciation, i)
	}
	return derived, false
}
