package stats

import (
	"github.com/montanaflynn/stats"

	"tourstats/pkg/models"
)

// Variables computes descriptive statistics for every column present
// in the first row of the dataset. Values failing numeric coercion are
// discarded; a column with no surviving numeric value is skipped
// entirely. Column order is the canonical schema order followed by the
// remaining columns sorted by name.
func Variables(rows []models.Row) []models.VariableSummary {
	if len(rows) == 0 {
		return []models.VariableSummary{}
	}

	columns := append([]string{}, models.CanonicalColumns...)
	columns = append(columns, rows[0].ExtraColumns()...)

	out := make([]models.VariableSummary, 0, len(columns))
	for _, col := range columns {
		values := make([]float64, 0, len(rows))
		for _, r := range rows {
			v, ok := r.Value(col)
			if !ok || v == nil || v == "" {
				continue
			}
			if f, ok := ParseNumber(v); ok {
				values = append(values, f)
			}
		}
		if len(values) == 0 {
			continue // non-numeric column
		}

		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		mean, _ := stats.Mean(values)
		median, _ := stats.Median(values)
		out = append(out, models.VariableSummary{
			Name:   col,
			Type:   "numeric",
			Min:    min,
			Max:    max,
			Std:    round(sampleStd(values), 2),
			Avg:    round(mean, 2),
			Median: median,
		})
	}
	return out
}
