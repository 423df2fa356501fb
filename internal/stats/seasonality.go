package stats

import (
	"sort"

	"tourstats/pkg/models"
)

type seasonalityAcc struct {
	year     string
	monthNum string
	italian  float64
	foreign  float64
	total    float64
	count    float64
}

// Seasonality averages the three stay series per calendar month. With
// perYear set, grouping is by (year, month) instead of month alone.
// Map iteration order is not stable, so the output is explicitly
// sorted ascending by year (when present) then month number.
func Seasonality(rows []models.Row, perYear bool) []models.SeasonalityRow {
	groups := make(map[string]*seasonalityAcc)
	for _, r := range rows {
		key := r.MonthNum
		if perYear {
			key = r.Year + "-" + r.MonthNum
		}
		acc, ok := groups[key]
		if !ok {
			acc = &seasonalityAcc{year: r.Year, monthNum: r.MonthNum}
			groups[key] = acc
		}
		acc.italian += r.ItalianStays
		acc.foreign += r.ForeignStays
		acc.total += r.TotalStays
		acc.count++
	}

	out := make([]models.SeasonalityRow, 0, len(groups))
	for _, acc := range groups {
		row := models.SeasonalityRow{
			MonthNum:      acc.monthNum,
			ItalianAvg:    round(acc.italian/acc.count, 2),
			ForeignersAvg: round(acc.foreign/acc.count, 2),
			TotalAvg:      round(acc.total/acc.count, 2),
		}
		if perYear {
			year := acc.year
			row.Year = &year
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if perYear && *out[i].Year != *out[j].Year {
			return *out[i].Year < *out[j].Year
		}
		return out[i].MonthNum < out[j].MonthNum
	})
	return out
}
