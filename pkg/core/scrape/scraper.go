// Package scrape turns a brokerage-data company page into statement tables.
//
// The page markup is an external, best-effort contract: structural drift
// yields fewer rows, never a crash. Everything fuzzy about label matching
// lives downstream in the extractor; this package only lifts the tables out
// of the HTML.
package scrape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"equitylens/pkg/models"
)

// Section selectors on the data page. Kept together so a markup change is a
// one-place fix.
const (
	profitLossSelector   = "section#profit-loss table, div#profit-loss table"
	balanceSheetSelector = "section#balance-sheet table, div#balance-sheet table"
	companyNameSelector  = "h1"
)

// Scraper parses company pages into StatementBundles.
type Scraper struct{}

// NewScraper creates a page scraper.
func NewScraper() *Scraper {
	return &Scraper{}
}

// ParsePage extracts the profit-and-loss and balance-sheet tables from the
// page HTML. Values stay as raw cell strings; the extractor owns parsing.
func (s *Scraper) ParsePage(html, ticker string) (*models.StatementBundle, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("scrape: parse page: %w", err)
	}

	bundle := &models.StatementBundle{
		Ticker:      ticker,
		CompanyName: strings.TrimSpace(doc.Find(companyNameSelector).First().Text()),
		SourceUnit:  detectSourceUnit(doc),
	}

	bundle.ProfitLoss, bundle.PeriodLabels = parseStatementTable(doc.Find(profitLossSelector).First())
	bs, bsLabels := parseStatementTable(doc.Find(balanceSheetSelector).First())
	bundle.BalanceSheet = bs
	if len(bundle.PeriodLabels) == 0 {
		bundle.PeriodLabels = bsLabels
	}

	if len(bundle.ProfitLoss.Rows) == 0 && len(bundle.BalanceSheet.Rows) == 0 {
		return nil, fmt.Errorf("scrape: no statement tables found for %s", ticker)
	}
	return bundle, nil
}

// parseStatementTable reads one table: header cells after the first become
// period labels, each body row becomes label + value cells.
func parseStatementTable(table *goquery.Selection) (models.StatementTable, []string) {
	var out models.StatementTable
	var labels []string

	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			return
		}
		labels = append(labels, strings.TrimSpace(th.Text()))
	})

	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		row := models.StatementRow{}
		cells.Each(func(j int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if j == 0 {
				row.Label = text
			} else {
				row.Cells = append(row.Cells, text)
			}
		})
		if row.Label == "" {
			return
		}
		out.Rows = append(out.Rows, row)
	})

	return out, labels
}

// detectSourceUnit looks for a unit notice near the tables. The source
// defaults to crore blocks.
func detectSourceUnit(doc *goquery.Document) models.SourceUnit {
	text := strings.ToLower(doc.Find("body").Text())
	switch {
	case strings.Contains(text, "in rs. lakhs") || strings.Contains(text, "rs. lakh"):
		return models.UnitLakh
	case strings.Contains(text, "in millions") || strings.Contains(text, "rs. million"):
		return models.UnitMillion
	case strings.Contains(text, "in thousands"):
		return models.UnitThousand
	default:
		return models.UnitCrore
	}
}

// embeddedQuote mirrors the JSON payload the page embeds for its price chart.
type embeddedQuote struct {
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`
	Shares    float64 `json:"shares_outstanding"`
	Beta      float64 `json:"beta"`
}

// ParseEmbeddedQuote extracts the current-price payload the page embeds in a
// script tag. The payload is frequently malformed (unquoted keys, trailing
// commas), so it goes through json-repair before unmarshaling. Returns nil
// without error when the page carries no payload; the quote is optional.
func ParseEmbeddedQuote(html string) (*models.Quote, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("scrape: parse page: %w", err)
	}

	var payload string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if idx := strings.Index(text, "window.quoteData"); idx >= 0 {
			if start := strings.Index(text[idx:], "{"); start >= 0 {
				payload = text[idx+start:]
				if end := strings.LastIndex(payload, "}"); end >= 0 {
					payload = payload[:end+1]
				}
			}
			return false
		}
		return true
	})
	if payload == "" {
		return nil, nil
	}

	repaired, err := jsonrepair.RepairJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("scrape: repair quote payload: %w", err)
	}
	var q embeddedQuote
	if err := json.Unmarshal([]byte(repaired), &q); err != nil {
		return nil, fmt.Errorf("scrape: decode quote payload: %w", err)
	}
	return &models.Quote{
		Price:             q.Price,
		MarketCap:         q.MarketCap,
		SharesOutstanding: q.Shares,
		Beta:              q.Beta,
	}, nil
}
