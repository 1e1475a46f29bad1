// Package normalize aligns heterogeneous-length period series to the
// configured historical window and rescales monetary values into the
// internal reporting unit.
package normalize

import (
	"fmt"

	"equitylens/pkg/models"
)

// Pad returns exactly the last n entries of the series, left-padding with
// zeros when fewer exist. A company with more history than n silently loses
// its oldest periods, never its most recent. Pad is idempotent.
//
// A non-positive n is a programming-contract violation, not a data-quality
// condition, and is reported as an error.
func Pad(series models.PeriodSeries, n int) (models.PeriodSeries, error) {
	if n < 1 {
		return nil, fmt.Errorf("normalize: window must be positive, got %d", n)
	}
	out := make(models.PeriodSeries, n)
	if len(series) >= n {
		copy(out, series[len(series)-n:])
		return out, nil
	}
	copy(out[n-len(series):], series)
	return out, nil
}

// PadLabels applies the same window policy to period labels, padding missing
// earlier labels with an empty string.
func PadLabels(labels []string, n int) []string {
	if n < 1 {
		return nil
	}
	out := make([]string, n)
	if len(labels) >= n {
		copy(out, labels[len(labels)-n:])
		return out
	}
	copy(out[n-len(labels):], labels)
	return out
}

// Internal reporting unit is the source's crore block (1e7 currency units);
// every other supported source unit converts into it by a single
// multiplicative factor, applied identically to all line items.
var unitFactors = map[models.SourceUnit]float64{
	models.UnitCrore:    1.0,
	models.UnitLakh:     0.01,
	models.UnitMillion:  0.1,
	models.UnitThousand: 0.0001,
}

// ToInternalUnit rescales one value from the source unit. Unknown units pass
// through unchanged rather than failing the ingestion.
func ToInternalUnit(value float64, unit models.SourceUnit) float64 {
	if f, ok := unitFactors[unit]; ok {
		return value * f
	}
	return value
}

// ConvertSeries rescales a whole series from the source unit.
func ConvertSeries(series models.PeriodSeries, unit models.SourceUnit) models.PeriodSeries {
	out := make(models.PeriodSeries, len(series))
	for i, v := range series {
		out[i] = ToInternalUnit(v, unit)
	}
	return out
}
