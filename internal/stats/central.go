package stats

import (
	"sort"

	"github.com/montanaflynn/stats"

	"tourstats/pkg/models"
)

// CentralTendency groups rows by area and computes mean, sample
// standard deviation and median of total stays per group. No group is
// dropped, even with a single row. Output is sorted by area.
func CentralTendency(rows []models.Row) []models.CentralTendencyRow {
	byArea := make(map[string][]float64)
	for _, r := range rows {
		byArea[r.Area] = append(byArea[r.Area], r.TotalStays)
	}

	areas := make([]string, 0, len(byArea))
	for area := range byArea {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	out := make([]models.CentralTendencyRow, 0, len(areas))
	for _, area := range areas {
		values := byArea[area]
		mean, _ := stats.Mean(values)
		median, _ := stats.Median(values)
		out = append(out, models.CentralTendencyRow{
			Area:   area,
			Mean:   round(mean, 1),
			Std:    round(sampleStd(values), 2),
			Median: median,
		})
	}
	return out
}
