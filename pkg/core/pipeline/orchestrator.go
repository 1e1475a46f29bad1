// Package pipeline wires the full company analysis: table ingestion,
// resolution, normalization, derivation, share-count resolution, and the
// valuation suite. Each analysis operates on independently-owned data, so
// concurrent analyses for different companies need no coordination.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"equitylens/pkg/core/assumption"
	"equitylens/pkg/core/derive"
	"equitylens/pkg/core/resolve"
	"equitylens/pkg/core/shares"
	"equitylens/pkg/core/store"
	"equitylens/pkg/core/valuation"
	"equitylens/pkg/models"
)

// TableSource supplies parsed statement tables for a ticker. Implementations
// wrap the HTML scraper, the spreadsheet parser, or a test fixture; the
// pipeline treats them identically.
type TableSource interface {
	FetchTables(ctx context.Context, ticker string) (*models.StatementBundle, error)
}

// MarketDataProvider supplies optional quote data (price, shares, beta) used
// as share-count and assumption fallbacks. May return nil without error.
type MarketDataProvider interface {
	Quote(ctx context.Context, ticker string) (*models.Quote, error)
}

// AnalysisReport is the immutable output of one company analysis.
type AnalysisReport struct {
	RunID       string                    `json:"run_id"`
	Ticker      string                    `json:"ticker"`
	CompanyName string                    `json:"company_name"`
	Derived     *models.DerivedFinancials `json:"derived"`
	Shares      models.ShareCount         `json:"shares"`
	Valuation   *models.ValuationResult   `json:"valuation"`
	FromCache   bool                      `json:"from_cache"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// Orchestrator runs analyses end to end.
type Orchestrator struct {
	source      TableSource
	market      MarketDataProvider // Optional
	cache       *store.AnalysisCache
	resolver    *resolve.Resolver
	engine      *derive.Engine
	shareRes    *shares.Resolver
	assumptions assumption.DiscountAssumptions
}

// NewOrchestrator creates an orchestrator. market and cache may be nil.
func NewOrchestrator(source TableSource, market MarketDataProvider, cache *store.AnalysisCache, policy derive.Policy, a assumption.DiscountAssumptions) (*Orchestrator, error) {
	engine, err := derive.NewEngine(policy)
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		source:      source,
		market:      market,
		cache:       cache,
		resolver:    resolve.NewResolver(),
		engine:      engine,
		shareRes:    shares.NewResolver(policy),
		assumptions: a,
	}, nil
}

// Analyze runs the full pipeline for one ticker. Data-quality problems are
// absorbed by the derivation fallbacks; the only analysis-fatal condition is
// an unresolvable company (no revenue in any period), reported as an error
// wrapping derive.ErrUnresolvableCompany.
func (o *Orchestrator) Analyze(ctx context.Context, ticker string, peers []models.PeerMultiples) (*AnalysisReport, error) {
	if o.cache != nil {
		if cached, err := o.cache.Get(ctx, ticker); err == nil && cached != nil {
			log.Printf("[Pipeline] cache hit for %s", ticker)
			return &AnalysisReport{
				RunID:       uuid.NewString(),
				Ticker:      cached.Ticker,
				Derived:     cached.Derived,
				Shares:      cached.Shares,
				Valuation:   cached.Valuation,
				FromCache:   true,
				GeneratedAt: cached.ComputedAt,
			}, nil
		}
	}

	bundle, err := o.source.FetchTables(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch tables for %s: %w", ticker, err)
	}

	raw := o.resolver.ResolveBundle(bundle)
	derived, err := o.engine.Derive(raw, bundle.PeriodLabels, bundle.SourceUnit)
	if err != nil {
		return nil, fmt.Errorf("pipeline: derive %s: %w", ticker, err)
	}

	sc := o.shareRes.Resolve(raw, bundle.SourceUnit)
	a := o.assumptions
	if o.market != nil {
		if quote, qerr := o.market.Quote(ctx, ticker); qerr == nil && quote != nil {
			sc = shares.WithLookup(sc, quote.SharesOutstanding)
			if quote.Beta > 0 {
				a.Beta = quote.Beta
			}
		}
	}

	result := valuation.RunAll(derived, sc, peers, a, o.engine.Policy().UnitScale)

	report := &AnalysisReport{
		RunID:       uuid.NewString(),
		Ticker:      bundle.Ticker,
		CompanyName: bundle.CompanyName,
		Derived:     derived,
		Shares:      sc,
		Valuation:   result,
		GeneratedAt: time.Now(),
	}

	if o.cache != nil {
		entry := &store.CachedAnalysis{
			Ticker:     report.Ticker,
			Derived:    derived,
			Shares:     sc,
			Valuation:  result,
			ComputedAt: report.GeneratedAt,
		}
		if err := o.cache.Save(ctx, entry); err != nil {
			log.Printf("[Pipeline] cache save failed for %s: %v", ticker, err)
		}
	}

	log.Printf("[Pipeline] %s analyzed: shares=%s, methods=%d, aggregate=%.2f",
		report.Ticker, sc.Provenance, len(result.Methods), result.AggregateFairValue)
	return report, nil
}
