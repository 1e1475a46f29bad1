// Package report renders an analysis into Markdown for the external PDF and
// dashboard layers. Heuristic-derived figures are always labeled so a
// computed zero is never presented as a measured fact.
package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"equitylens/pkg/core/pipeline"
	"equitylens/pkg/models"
)

// BuildMarkdown renders the analyst report.
func BuildMarkdown(r *pipeline.AnalysisReport) string {
	var b strings.Builder

	name := r.CompanyName
	if name == "" {
		name = r.Ticker
	}
	fmt.Fprintf(&b, "# Valuation Report: %s\n\n", name)
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04"))

	writeFinancials(&b, r.Derived)
	writeValuation(&b, r)
	writeCaveats(&b, r)

	return b.String()
}

func writeFinancials(b *strings.Builder, d *models.DerivedFinancials) {
	b.WriteString("## Derived Financials\n\n")
	b.WriteString("| Line item |")
	for _, label := range d.PeriodLabels {
		if label == "" {
			label = "—"
		}
		fmt.Fprintf(b, " %s |", label)
	}
	b.WriteString("\n|---|")
	for range d.PeriodLabels {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	row := func(name string, s models.PeriodSeries) {
		fmt.Fprintf(b, "| %s |", name)
		for _, v := range s {
			fmt.Fprintf(b, " %.1f |", v)
		}
		b.WriteString("\n")
	}
	row("Revenue", d.Revenue)
	row("EBITDA", d.EBITDA)
	row("EBIT", d.EBIT)
	row("NOPAT", d.NOPAT)
	row("Equity", d.Equity)
	row("Total debt", sumSeries(d.STDebt, d.LTDebt))
	b.WriteString("\n")
}

func writeValuation(b *strings.Builder, r *pipeline.AnalysisReport) {
	b.WriteString("## Valuation\n\n")
	b.WriteString("| Method | Fair value / share | Status |\n|---|---|---|\n")
	for _, m := range r.Valuation.Methods {
		status := "ok"
		if !m.Valid {
			status = "excluded"
			if m.Note != "" {
				status = m.Note
			}
		}
		fair := "n/a"
		if m.Valid {
			fair = fmt.Sprintf("%.2f", m.FairValue)
		}
		fmt.Fprintf(b, "| %s | %s | %s |\n", m.Method, fair, status)
	}
	b.WriteString("\n")

	if r.Valuation.HasValuation {
		fmt.Fprintf(b, "**Aggregate fair value: %.2f per share** (mean of valid methods).\n\n", r.Valuation.AggregateFairValue)
	} else {
		b.WriteString("**No valuation available**: every method was excluded for insufficient inputs.\n\n")
	}
	fmt.Fprintf(b, "WACC %.2f%% (Ke %.2f%%, after-tax Kd %.2f%%).\n\n",
		r.Valuation.WACC.WACC*100, r.Valuation.WACC.CostOfEquity*100, r.Valuation.WACC.CostOfDebt*100)
}

func writeCaveats(b *strings.Builder, r *pipeline.AnalysisReport) {
	b.WriteString("## Caveats\n\n")
	fmt.Fprintf(b, "- Shares outstanding: %.0f (provenance: %s).\n", r.Shares.Value, r.Shares.Provenance)
	if r.Valuation.TerminalValueFlagged {
		b.WriteString("- Terminal value undefined (WACC at or below terminal growth); DCF excluded.\n")
	}
	if r.Derived.IsNBFC {
		b.WriteString("- Receivables proxied from loans & advances (NBFC-style balance sheet).\n")
	}
	for _, note := range r.Derived.Notes {
		fmt.Fprintf(b, "- `%s` estimated via %s, not read from source data.\n", note.Field, note.Method)
	}
}

// Validate checks the rendered report parses as Markdown. Goldmark is very
// permissive, so this is a basic sanity check.
func Validate(markdown string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(markdown))
	return parser.Parse(reader) != nil
}

func sumSeries(a, b models.PeriodSeries) models.PeriodSeries {
	out := make(models.PeriodSeries, len(a))
	for i := range a {
		out[i] = a[i]
		if i < len(b) {
			out[i] += b[i]
		}
	}
	return out
}
