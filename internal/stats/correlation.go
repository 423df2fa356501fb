package stats

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"tourstats/pkg/models"
)

// CompleteColumns is the 12-column set assumed to have no missing
// values in the upstream dataset.
var CompleteColumns = []string{
	"arrivals_italians", "arrivals_foreigners", "total_arrivals",
	"stays_italians", "stays_foreigners", "total_stays",
	"avg_stay_italians", "avg_stay_foreigners", "avg_stay_total",
	"beds", "rooms", "establishments",
}

// ExtendedColumns adds three derived indicators that are missing for
// part of the dataset; matrices over this set must drop incomplete
// rows.
var ExtendedColumns = append(append([]string{}, CompleteColumns...),
	"occupancy_rate", "tourism_intensity", "seasonality_index",
)

// PearsonMatrix builds the pairwise Pearson correlation matrix over
// the given ordered column set.
func PearsonMatrix(rows []models.Row, columns []string, dropMissing bool) models.CorrelationMatrix {
	return matrix(rows, columns, dropMissing, pearson)
}

// SpearmanMatrix builds the pairwise rank (Spearman) correlation
// matrix over the given ordered column set.
func SpearmanMatrix(rows []models.Row, columns []string, dropMissing bool) models.CorrelationMatrix {
	return matrix(rows, columns, dropMissing, spearman)
}

// ColumnVectors extracts one numeric array per column. With
// dropMissing set, a row missing a numeric value in ANY column is
// excluded from every column's array, which keeps index alignment
// across columns (complete-case filtering). Without it, columns are
// coerced independently and may end up with different lengths.
func ColumnVectors(rows []models.Row, columns []string, dropMissing bool) map[string][]float64 {
	vectors := make(map[string][]float64, len(columns))
	for _, col := range columns {
		vectors[col] = []float64{}
	}

	if dropMissing {
		for _, r := range rows {
			parsed := make([]float64, len(columns))
			complete := true
			for i, col := range columns {
				v, ok := r.Value(col)
				if !ok {
					complete = false
					break
				}
				f, ok := ParseNumber(v)
				if !ok {
					complete = false
					break
				}
				parsed[i] = f
			}
			if !complete {
				continue
			}
			for i, col := range columns {
				vectors[col] = append(vectors[col], parsed[i])
			}
		}
		return vectors
	}

	for _, r := range rows {
		for _, col := range columns {
			v, ok := r.Value(col)
			if !ok {
				continue
			}
			if f, ok := ParseNumber(v); ok {
				vectors[col] = append(vectors[col], f)
			}
		}
	}
	return vectors
}

func matrix(rows []models.Row, columns []string, dropMissing bool, coef func(x, y []float64) *float64) models.CorrelationMatrix {
	vectors := ColumnVectors(rows, columns, dropMissing)

	// in the no-drop case column lengths can diverge; truncate all of
	// them to the shortest so pairwise indices stay aligned
	shortest := math.MaxInt
	for _, col := range columns {
		if n := len(vectors[col]); n < shortest {
			shortest = n
		}
	}
	for _, col := range columns {
		vectors[col] = vectors[col][:shortest]
	}

	one := 1.0
	n := len(columns)
	values := make([][]*float64, n)
	for i := range values {
		values[i] = make([]*float64, n)
	}
	for i := 0; i < n; i++ {
		// self-correlation is 1 by convention, not computed
		values[i][i] = &one
		for j := i + 1; j < n; j++ {
			c := coef(vectors[columns[i]], vectors[columns[j]])
			values[i][j] = c
			values[j][i] = c
		}
	}

	return models.CorrelationMatrix{
		Columns: append([]string{}, columns...),
		Values:  values,
	}
}

func pearson(x, y []float64) *float64 {
	// a zero-variance column has no defined correlation with anything;
	// the stats library reports 0 there, which would be misleading
	if len(x) == 0 || constant(x) || constant(y) {
		return nil
	}
	r, err := stats.Pearson(x, y)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return &r
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func spearman(x, y []float64) *float64 {
	return pearson(ranks(x), ranks(y))
}

// ranks assigns 1-based ranks with ties receiving the average of the
// ranks they span.
func ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// average rank over the tie run [i, j]
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}
