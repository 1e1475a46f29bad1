// Package ingest parses uploaded spreadsheet exports into the same
// StatementBundle the HTML scraper produces, so the core treats both sources
// identically once tabular.
package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"equitylens/pkg/models"
)

// Sheet name fragments matched case-insensitively against the workbook.
var (
	profitLossSheets   = []string{"profit & loss", "profit and loss", "p&l", "income"}
	balanceSheetSheets = []string{"balance sheet", "balance-sheet"}
)

// SpreadsheetParser reads statement workbooks exported by the data source.
type SpreadsheetParser struct{}

// NewSpreadsheetParser creates a workbook parser.
func NewSpreadsheetParser() *SpreadsheetParser {
	return &SpreadsheetParser{}
}

// Parse reads an xlsx workbook. Each statement sheet has a header row of
// period labels and data rows of label + per-period values. A workbook with
// neither statement sheet is unusable; anything partial is best-effort.
func (p *SpreadsheetParser) Parse(r io.Reader, ticker string) (*models.StatementBundle, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: open workbook: %w", err)
	}
	defer f.Close()

	bundle := &models.StatementBundle{
		Ticker:     ticker,
		SourceUnit: models.UnitCrore,
	}

	if sheet := findSheet(f, profitLossSheets); sheet != "" {
		bundle.ProfitLoss, bundle.PeriodLabels = readSheet(f, sheet)
	}
	if sheet := findSheet(f, balanceSheetSheets); sheet != "" {
		var labels []string
		bundle.BalanceSheet, labels = readSheet(f, sheet)
		if len(bundle.PeriodLabels) == 0 {
			bundle.PeriodLabels = labels
		}
	}

	if len(bundle.ProfitLoss.Rows) == 0 && len(bundle.BalanceSheet.Rows) == 0 {
		return nil, fmt.Errorf("ingest: no statement sheets in workbook for %s", ticker)
	}
	return bundle, nil
}

// findSheet returns the first workbook sheet whose name contains any of the
// candidate fragments, case-insensitively.
func findSheet(f *excelize.File, candidates []string) string {
	for _, name := range f.GetSheetList() {
		lower := strings.ToLower(name)
		for _, c := range candidates {
			if strings.Contains(lower, c) {
				return name
			}
		}
	}
	return ""
}

// readSheet converts one sheet into a statement table. The first row whose
// first cell is blank or reads like a header supplies the period labels;
// remaining rows are line items.
func readSheet(f *excelize.File, sheet string) (models.StatementTable, []string) {
	var table models.StatementTable
	var labels []string

	rows, err := f.GetRows(sheet)
	if err != nil {
		return table, nil
	}

	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		first := strings.TrimSpace(cells[0])
		if labels == nil && looksLikeHeader(first) {
			for _, c := range cells[1:] {
				labels = append(labels, strings.TrimSpace(c))
			}
			continue
		}
		if first == "" {
			continue
		}
		row := models.StatementRow{Label: first}
		for _, c := range cells[1:] {
			row.Cells = append(row.Cells, strings.TrimSpace(c))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, labels
}

// looksLikeHeader reports whether the leading cell marks the period-label row.
func looksLikeHeader(first string) bool {
	if first == "" {
		return true
	}
	lower := strings.ToLower(first)
	return strings.Contains(lower, "particular") || strings.Contains(lower, "narration") || strings.Contains(lower, "line item")
}
