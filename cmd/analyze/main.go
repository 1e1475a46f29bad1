// Command analyze runs the valuation pipeline against a local company page
// snapshot (HTML) or spreadsheet export (xlsx) and prints the Markdown
// report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"equitylens/pkg/core/assumption"
	"equitylens/pkg/core/derive"
	"equitylens/pkg/core/ingest"
	"equitylens/pkg/core/pipeline"
	"equitylens/pkg/core/report"
	"equitylens/pkg/core/scrape"
	"equitylens/pkg/models"
)

// fileSource serves one pre-fetched statement bundle.
type fileSource struct {
	bundle *models.StatementBundle
}

func (s *fileSource) FetchTables(ctx context.Context, ticker string) (*models.StatementBundle, error) {
	return s.bundle, nil
}

func main() {
	godotenv.Load()

	var (
		path        = flag.String("file", "", "local HTML page snapshot or xlsx export")
		ticker      = flag.String("ticker", "", "ticker symbol for the report")
		assumptions = flag.String("assumptions", "", "optional HJSON assumption file")
	)
	flag.Parse()

	if *path == "" || *ticker == "" {
		flag.Usage()
		os.Exit(2)
	}

	a := assumption.Defaults()
	if *assumptions != "" {
		loaded, err := assumption.LoadFile(*assumptions)
		if err != nil {
			log.Fatalf("assumptions: %v", err)
		}
		a = loaded
	}

	bundle, err := loadBundle(*path, strings.ToUpper(*ticker))
	if err != nil {
		log.Fatalf("load %s: %v", *path, err)
	}

	orch, err := pipeline.NewOrchestrator(&fileSource{bundle: bundle}, nil, nil, derive.DefaultPolicy(), a)
	if err != nil {
		log.Fatalf("orchestrator: %v", err)
	}

	rep, err := orch.Analyze(context.Background(), bundle.Ticker, nil)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	md := report.BuildMarkdown(rep)
	if !report.Validate(md) {
		log.Fatalf("generated report failed markdown validation")
	}
	fmt.Print(md)
}

func loadBundle(path, ticker string) (*models.StatementBundle, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ingest.NewSpreadsheetParser().Parse(f, ticker)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return scrape.NewScraper().ParsePage(string(data), ticker)
	}
}
