// Package shares derives shares outstanding from reported figures, with a
// provenance tag so the presentation layer can tell how the number was made.
package shares

import (
	"log"

	"equitylens/pkg/core/derive"
	"equitylens/pkg/core/normalize"
	"equitylens/pkg/models"
)

// Resolver derives a share count from EPS and net profit, falling back to
// equity capital over an assumed par value.
type Resolver struct {
	policy derive.Policy
}

// NewResolver creates a resolver bound to the active policy constants.
func NewResolver(policy derive.Policy) *Resolver {
	return &Resolver{policy: policy}
}

// Resolve scans periods from most recent to oldest; the first period where
// both EPS and net profit are non-zero yields
//
//	shares = net_profit * unit_scale / eps
//
// (net profit is in internal reporting-unit blocks, EPS is per absolute
// share). Failing that, shares = equity_capital * unit_scale / par_value.
// Still unresolved is a recoverable condition: the caller may substitute an
// external market-data lookup via WithLookup.
//
// Raw series may have ragged lengths (blank cells are dropped upstream);
// they are end-aligned, most recent last, so the scan walks both series by
// offset from the tail.
func (r *Resolver) Resolve(raw *models.RawFinancialTable, unit models.SourceUnit) models.ShareCount {
	eps := raw.EPS
	netProfit := normalize.ConvertSeries(raw.NetProfit, unit)

	n := len(eps)
	if len(netProfit) < n {
		n = len(netProfit)
	}
	for off := 1; off <= n; off++ {
		e := eps[len(eps)-off]
		np := netProfit[len(netProfit)-off]
		if e != 0 && np != 0 {
			return models.ShareCount{
				Value:      np * r.policy.UnitScale / e,
				Provenance: models.SharesFromEPS,
			}
		}
	}

	equityCapital := normalize.ConvertSeries(raw.EquityCapital, unit)
	for i := len(equityCapital) - 1; i >= 0; i-- {
		if equityCapital[i] > 0 {
			return models.ShareCount{
				Value:      equityCapital[i] * r.policy.UnitScale / r.policy.AssumedParValue,
				Provenance: models.SharesFromParValue,
			}
		}
	}

	log.Printf("[Shares] unresolved from statements, deferring to external lookup")
	return models.ShareCount{Value: 0, Provenance: models.SharesUnresolved}
}

// WithLookup substitutes an externally supplied share count when the
// statement-based resolution came up empty. A resolved count is kept as-is.
func WithLookup(sc models.ShareCount, lookup float64) models.ShareCount {
	if sc.Resolved() || lookup <= 0 {
		return sc
	}
	return models.ShareCount{Value: lookup, Provenance: models.SharesFromLookup}
}
