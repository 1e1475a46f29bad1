package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"equitylens/pkg/api/analysis"
	"equitylens/pkg/core/assumption"
	"equitylens/pkg/core/derive"
	"equitylens/pkg/core/pipeline"
	"equitylens/pkg/core/scrape"
	"equitylens/pkg/core/store"
	"equitylens/pkg/models"
)

// ServerConfig is the YAML server configuration.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	SourceBaseURL   string `yaml:"source_base_url"`
	CacheDir        string `yaml:"cache_dir"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
	AssumptionsFile string `yaml:"assumptions_file"`
}

func loadConfig(path string) ServerConfig {
	cfg := ServerConfig{
		Addr:            ":8080",
		SourceBaseURL:   "https://www.screener.in",
		CacheTTLMinutes: 60,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Server] config %s not found, using defaults", path)
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("[Server] config %s unreadable (%v), using defaults", path, err)
	}
	return cfg
}

// pageSource fetches and parses the company page. Retry and proxy plumbing
// belong to an upstream gateway, not here.
type pageSource struct {
	baseURL string
	client  *http.Client
	scraper *scrape.Scraper
}

func (s *pageSource) fetch(ctx context.Context, ticker string) (string, error) {
	url := fmt.Sprintf("%s/company/%s/", s.baseURL, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *pageSource) FetchTables(ctx context.Context, ticker string) (*models.StatementBundle, error) {
	html, err := s.fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return s.scraper.ParsePage(html, ticker)
}

func (s *pageSource) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	html, err := s.fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return scrape.ParseEmbeddedQuote(html)
}

func main() {
	godotenv.Load()

	cfg := loadConfig("config/server.yaml")

	assumptions := assumption.Defaults()
	if cfg.AssumptionsFile != "" {
		loaded, err := assumption.LoadFile(cfg.AssumptionsFile)
		if err != nil {
			log.Printf("[Server] assumptions file: %v, using defaults", err)
		} else {
			assumptions = loaded
		}
	}

	var pool *pgxpool.Pool
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		var err error
		pool, err = pgxpool.New(context.Background(), dbURL)
		if err != nil {
			log.Printf("[Server] database unavailable (%v), using file cache", err)
			pool = nil
		}
	}
	cache := store.NewAnalysisCache(pool, cfg.CacheDir, time.Duration(cfg.CacheTTLMinutes)*time.Minute)

	source := &pageSource{
		baseURL: cfg.SourceBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		scraper: scrape.NewScraper(),
	}

	orch, err := pipeline.NewOrchestrator(source, source, cache, derive.DefaultPolicy(), assumptions)
	if err != nil {
		log.Fatalf("[Server] orchestrator init: %v", err)
	}

	handler := analysis.NewHandler(orch)
	http.HandleFunc("/api/analyze", handler.HandleAnalyze)
	http.HandleFunc("/api/report", handler.HandleReport)
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Printf("[Server] listening on %s (source: %s)", cfg.Addr, cfg.SourceBaseURL)
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.Fatalf("[Server] %v", err)
	}
}
