package stats

import (
	"sort"

	"tourstats/pkg/models"
)

type dominanceAcc struct {
	italians   float64
	foreigners float64
	total      float64
}

// Dominance sums stays per area and derives the italians-to-foreigners
// ratio plus both share percentages. Division-by-zero never throws and
// never yields Inf: a zero foreigner count makes the ratio nil, a zero
// total makes both shares nil. Output is sorted descending by ratio
// with nil ratios last.
func Dominance(rows []models.Row) []models.DominanceRow {
	byArea := make(map[string]*dominanceAcc)
	for _, r := range rows {
		acc, ok := byArea[r.Area]
		if !ok {
			acc = &dominanceAcc{}
			byArea[r.Area] = acc
		}
		acc.italians += r.ItalianStays
		acc.foreigners += r.ForeignStays
		acc.total += r.TotalStays
	}

	out := make([]models.DominanceRow, 0, len(byArea))
	for area, acc := range byArea {
		row := models.DominanceRow{
			Area:       area,
			Italians:   acc.italians,
			Foreigners: acc.foreigners,
		}

		if acc.foreigners != 0 {
			ratio := round(acc.italians/acc.foreigners, 2)
			row.Ratio = &ratio
		}

		total := acc.total
		if total == 0 {
			total = acc.italians + acc.foreigners
		}
		if total != 0 {
			ita := round(acc.italians/total*100, 2)
			fore := round(acc.foreigners/total*100, 2)
			row.ItalianSharePercent = &ita
			row.ForeignSharePercent = &fore
		}

		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		ri, rj := ratioOrNegInf(out[i].Ratio), ratioOrNegInf(out[j].Ratio)
		if ri != rj {
			return ri > rj
		}
		return out[i].Area < out[j].Area
	})
	return out
}

func ratioOrNegInf(r *float64) float64 {
	if r == nil {
		return negInf
	}
	return *r
}
