// Package store caches completed analyses keyed by ticker so repeated
// requests do not re-run ingestion. DB is primary when a pool is configured;
// otherwise a local JSON file cache is used. The pipeline works with a nil
// cache; the core never depends on its existence.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"equitylens/pkg/models"
)

// AnalysisCache is a read-through cache with a fixed time-to-live.
type AnalysisCache struct {
	pool    *pgxpool.Pool
	fileDir string
	ttl     time.Duration
}

// NewAnalysisCache creates a cache. With a nil pool and empty dir it falls
// back to a default local directory.
func NewAnalysisCache(pool *pgxpool.Pool, dir string, ttl time.Duration) *AnalysisCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "analyses")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check AnalysisCache dir: %v\n", err)
		}
	}
	return &AnalysisCache{pool: pool, fileDir: dir, ttl: ttl}
}

// CachedAnalysis is the stored payload with its freshness timestamp.
type CachedAnalysis struct {
	Ticker     string                    `json:"ticker"`
	Derived    *models.DerivedFinancials `json:"derived"`
	Shares     models.ShareCount         `json:"shares"`
	Valuation  *models.ValuationResult   `json:"valuation"`
	ComputedAt time.Time                 `json:"computed_at"`
}

// Get returns the cached analysis for a ticker, or nil on miss or expiry.
// Expiry is a plain miss, not an error.
func (c *AnalysisCache) Get(ctx context.Context, ticker string) (*CachedAnalysis, error) {
	if c.pool != nil {
		query := `
			SELECT derived, shares, valuation, computed_at
			FROM analyses
			WHERE ticker = $1
			ORDER BY computed_at DESC
			LIMIT 1
		`
		var derivedJSON, sharesJSON, valuationJSON []byte
		var computedAt time.Time
		err := c.pool.QueryRow(ctx, query, strings.ToUpper(ticker)).Scan(&derivedJSON, &sharesJSON, &valuationJSON, &computedAt)
		if err != nil {
			return nil, nil // Cache miss
		}
		if c.expired(computedAt) {
			return nil, nil
		}
		entry := &CachedAnalysis{Ticker: strings.ToUpper(ticker), ComputedAt: computedAt}
		if err := json.Unmarshal(derivedJSON, &entry.Derived); err != nil {
			return nil, fmt.Errorf("store: unmarshal cached derived: %w", err)
		}
		if err := json.Unmarshal(sharesJSON, &entry.Shares); err != nil {
			return nil, fmt.Errorf("store: unmarshal cached shares: %w", err)
		}
		if err := json.Unmarshal(valuationJSON, &entry.Valuation); err != nil {
			return nil, fmt.Errorf("store: unmarshal cached valuation: %w", err)
		}
		return entry, nil
	}

	if c.fileDir != "" {
		return c.loadFromFile(ticker)
	}
	return nil, nil
}

// Save stores a completed analysis under its ticker.
func (c *AnalysisCache) Save(ctx context.Context, entry *CachedAnalysis) error {
	entry.Ticker = strings.ToUpper(entry.Ticker)
	if entry.ComputedAt.IsZero() {
		entry.ComputedAt = time.Now()
	}

	if c.pool != nil {
		derivedJSON, err := json.Marshal(entry.Derived)
		if err != nil {
			return fmt.Errorf("store: marshal derived: %w", err)
		}
		sharesJSON, err := json.Marshal(entry.Shares)
		if err != nil {
			return fmt.Errorf("store: marshal shares: %w", err)
		}
		valuationJSON, err := json.Marshal(entry.Valuation)
		if err != nil {
			return fmt.Errorf("store: marshal valuation: %w", err)
		}
		query := `
			INSERT INTO analyses (ticker, derived, shares, valuation, computed_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (ticker)
			DO UPDATE SET
				derived = EXCLUDED.derived,
				shares = EXCLUDED.shares,
				valuation = EXCLUDED.valuation,
				computed_at = EXCLUDED.computed_at
		`
		if _, err := c.pool.Exec(ctx, query, entry.Ticker, derivedJSON, sharesJSON, valuationJSON, entry.ComputedAt); err != nil {
			return fmt.Errorf("store: save to db cache: %w", err)
		}
		return nil
	}

	if c.fileDir != "" {
		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("store: marshal cache entry: %w", err)
		}
		if err := os.WriteFile(c.tickerPath(entry.Ticker), data, 0644); err != nil {
			return fmt.Errorf("store: save to file cache: %w", err)
		}
	}
	return nil
}

func (c *AnalysisCache) expired(computedAt time.Time) bool {
	return c.ttl > 0 && time.Since(computedAt) > c.ttl
}

func (c *AnalysisCache) tickerPath(ticker string) string {
	safe := strings.ReplaceAll(strings.ToUpper(ticker), string(os.PathSeparator), "_")
	return filepath.Join(c.fileDir, safe+".json")
}

func (c *AnalysisCache) loadFromFile(ticker string) (*CachedAnalysis, error) {
	data, err := os.ReadFile(c.tickerPath(ticker))
	if err != nil {
		return nil, nil // Not found
	}
	var entry CachedAnalysis
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("store: unmarshal cache file: %w", err)
	}
	if c.expired(entry.ComputedAt) {
		return nil, nil
	}
	return &entry, nil
}
