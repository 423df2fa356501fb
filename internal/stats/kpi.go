package stats

import (
	"sort"

	"tourstats/pkg/models"
)

// KPI collapses area granularity into one region-wide monthly series
// (total stays summed per "YYYY-MM" month) and derives the headline
// figures from it. An empty input yields an all-nil bundle, never an
// error.
func KPI(rows []models.Row) models.KPIBundle {
	byMonth := make(map[string]float64)
	for _, r := range rows {
		byMonth[r.Month] += r.TotalStays
	}
	if len(byMonth) == 0 {
		return models.KPIBundle{}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	var total float64
	maxMonth, minMonth := months[0], months[0]
	for _, m := range months {
		v := byMonth[m]
		total += v
		// strict comparisons keep the first month attaining a tie
		if v > byMonth[maxMonth] {
			maxMonth = m
		}
		if v < byMonth[minMonth] {
			minMonth = m
		}
	}

	avg := round(total/float64(len(months)), 0)
	maxV, minV := byMonth[maxMonth], byMonth[minMonth]
	return models.KPIBundle{
		TotalTouristStays:   &total,
		AverageMonthlyStays: &avg,
		MaxMonthlyStays:     &maxV,
		MaxMonthlyLabel:     &maxMonth,
		MinMonthlyStays:     &minV,
		MinMonthlyLabel:     &minMonth,
	}
}
