package store

import (
	"context"
	"testing"
	"time"

	"equitylens/pkg/models"
)

func sampleEntry(ticker string, computedAt time.Time) *CachedAnalysis {
	return &CachedAnalysis{
		Ticker: ticker,
		Derived: &models.DerivedFinancials{
			Revenue: models.PeriodSeries{1000, 1100},
		},
		Shares:     models.ShareCount{Value: 1e8, Provenance: models.SharesFromEPS},
		Valuation:  &models.ValuationResult{AggregateFairValue: 120, HasValuation: true},
		ComputedAt: computedAt,
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	cache := NewAnalysisCache(nil, t.TempDir(), time.Hour)
	ctx := context.Background()

	if err := cache.Save(ctx, sampleEntry("acme", time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Lookup is case-insensitive on ticker.
	got, err := cache.Get(ctx, "ACME")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatalf("Expected a cache hit")
	}
	if got.Ticker != "ACME" {
		t.Errorf("Ticker: expected ACME, got %s", got.Ticker)
	}
	if got.Shares.Value != 1e8 {
		t.Errorf("Shares: expected 1e8, got %v", got.Shares.Value)
	}
	if !got.Valuation.HasValuation || got.Valuation.AggregateFairValue != 120 {
		t.Errorf("unexpected cached valuation %+v", got.Valuation)
	}
}

func TestFileCacheMiss(t *testing.T) {
	cache := NewAnalysisCache(nil, t.TempDir(), time.Hour)
	got, err := cache.Get(context.Background(), "UNKNOWN")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Expected a miss, got %+v", got)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	cache := NewAnalysisCache(nil, t.TempDir(), time.Hour)
	ctx := context.Background()

	stale := sampleEntry("old", time.Now().Add(-2*time.Hour))
	if err := cache.Save(ctx, stale); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := cache.Get(ctx, "OLD")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Expected expired entry treated as a miss, got %+v", got)
	}
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	cache := NewAnalysisCache(nil, t.TempDir(), 0)
	ctx := context.Background()

	if err := cache.Save(ctx, sampleEntry("keep", time.Now().Add(-24*time.Hour))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := cache.Get(ctx, "KEEP")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Errorf("Expected a hit with zero TTL")
	}
}
