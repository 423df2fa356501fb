package stats

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

var negInf = math.Inf(-1)

// ParseNumber coerces an arbitrary cell value into a float64. It is
// the single numeric-coercion point of the engine: strings are trimmed
// and comma decimals swapped for dots before parsing. The bool result
// is false for nil, empty and non-numeric input.
func ParseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// round rounds to the given number of decimals, passing the value
// through unchanged when the stats library cannot round it.
func round(x float64, places int) float64 {
	r, err := stats.Round(x, places)
	if err != nil {
		return x
	}
	return r
}

// sampleStd is the sample standard deviation, with the single-sample
// case pinned to 0 (the deviation of one observation is unknowable; 0
// keeps single-row groups in the output with a finite value).
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return 0
	}
	return sd
}
