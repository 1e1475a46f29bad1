// Package extract locates line items inside parsed statement tables.
//
// Upstream tables come from an uncontrolled source (scraped HTML or an
// uploaded spreadsheet), so row labels are matched best-effort: normalized,
// case-insensitive substring matching against an ordered keyword list.
// Absence is an expected outcome, not an error.
package extract

import (
	"strconv"
	"strings"

	"equitylens/pkg/models"
)

// ScanStrategy selects a row series from a table given candidate keywords.
type ScanStrategy interface {
	Scan(table models.StatementTable, keywords []string) models.PeriodSeries
}

// FirstMatchScan returns the first row in document order whose normalized
// label contains any keyword, trying keywords in priority order per row.
type FirstMatchScan struct{}

// Scan implements ScanStrategy.
func (FirstMatchScan) Scan(table models.StatementTable, keywords []string) models.PeriodSeries {
	for _, row := range table.Rows {
		label := NormalizeLabel(row.Label)
		if label == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(label, kw) {
				return parseCells(row.Cells)
			}
		}
	}
	return models.PeriodSeries{}
}

// NonZeroScan rejects all-zero matches and keeps scanning for a later row
// with the same or next keyword. This handles duplicate nested rows, e.g. a
// "trade receivables" line appearing once empty at top level and again with
// values under "other assets".
type NonZeroScan struct{}

// Scan implements ScanStrategy.
func (NonZeroScan) Scan(table models.StatementTable, keywords []string) models.PeriodSeries {
	for _, row := range table.Rows {
		label := NormalizeLabel(row.Label)
		if label == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(label, kw) {
				series := parseCells(row.Cells)
				if !series.IsZero() {
					return series
				}
				break
			}
		}
	}
	return models.PeriodSeries{}
}

// Extractor scans statement tables with a primary pass and a nested-row
// second pass. It is a pure function of its inputs.
type Extractor struct {
	primary ScanStrategy
	second  ScanStrategy
}

// NewExtractor creates an extractor with the standard two-pass policy.
func NewExtractor() *Extractor {
	return &Extractor{primary: FirstMatchScan{}, second: NonZeroScan{}}
}

// Extract returns the per-period series for the first row matching any of the
// candidate keywords, or an empty series when no row matches.
func (e *Extractor) Extract(table models.StatementTable, keywords []string) models.PeriodSeries {
	return e.primary.Scan(table, keywords)
}

// ExtractUsable runs the primary scan and, when it yields nothing usable
// (no match or an all-zero row), retries with the nested-row second pass.
func (e *Extractor) ExtractUsable(table models.StatementTable, keywords []string) models.PeriodSeries {
	series := e.primary.Scan(table, keywords)
	if !series.IsEmpty() && !series.IsZero() {
		return series
	}
	if retry := e.second.Scan(table, keywords); !retry.IsEmpty() {
		return retry
	}
	return series
}

// NormalizeLabel prepares a raw label cell for matching: non-breaking spaces
// become plain spaces, whitespace collapses, leading +/- expander decorations
// are stripped, and the result is lowercased.
func NormalizeLabel(raw string) string {
	s := strings.ReplaceAll(raw, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToLower(s)
	s = strings.TrimLeft(s, "+- ")
	return s
}

// parseCells converts raw value cells into a numeric series. Empty cells are
// true absence and are skipped; a non-empty cell that fails to parse becomes
// 0.0 rather than aborting the row.
func parseCells(cells []string) models.PeriodSeries {
	series := make(models.PeriodSeries, 0, len(cells))
	for _, cell := range cells {
		v, present := ParseCell(cell)
		if !present {
			continue
		}
		series = append(series, v)
	}
	return series
}

var cellStripper = strings.NewReplacer(
	",", "",
	"₹", "",
	"$", "",
	"%", "",
	"\u00a0", "",
)

// ParseCell parses one value cell. The second return is false only for blank
// cells; parse failures on non-blank cells report 0.0 and true.
func ParseCell(cell string) (float64, bool) {
	s := strings.TrimSpace(cellStripper.Replace(cell))
	if s == "" {
		return 0, false
	}
	// Accounting negatives: (1,234) means -1234
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true
	}
	if negative {
		v = -v
	}
	return v, true
}
