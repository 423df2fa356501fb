package models

import "sort"

// Envelope is the raw upstream payload, kept untyped until the
// ingestion layer validates its shape. The only structural requirement
// is a "rows" key holding a sequence of flat records.
type Envelope map[string]any

// Row is the normalized, internal form of one tourism record.
//
// Every raw source (API envelope or CSV extract) is mapped into this
// structure first, then all aggregations operate on it. TotalStays is
// always derived as ItalianStays + ForeignStays, never stored
// independently.
type Row struct {
	Year         string         `json:"year"`      // 4-digit year
	MonthNum     string         `json:"month_num"` // zero-padded "01".."12"
	Month        string         `json:"month"`     // "YYYY-MM", lexically sortable
	Date         *string        `json:"date"`      // ISO date, nil when absent
	Area         string         `json:"area"`      // "Unknown" when missing
	ItalianStays float64        `json:"italian_stays"`
	ForeignStays float64        `json:"foreign_stays"`
	TotalStays   float64        `json:"total_stays"`
	Extra        map[string]any `json:"-"` // remaining renamed columns (arrivals, beds, ...)
}

// CanonicalColumns is the fixed schema-order of the typed Row fields,
// used wherever "the columns of a row" must have a deterministic order.
var CanonicalColumns = []string{
	"year", "month_num", "month", "date", "area",
	"italian_stays", "foreign_stays", "total_stays",
}

// Value resolves a column by name against the typed fields first, then
// the Extra map. The stays columns answer to both their canonical names
// and the upstream-style aliases used by the correlation column sets.
func (r Row) Value(name string) (any, bool) {
	switch name {
	case "year":
		return r.Year, true
	case "month_num":
		return r.MonthNum, true
	case "month":
		return r.Month, true
	case "date":
		if r.Date == nil {
			return nil, true
		}
		return *r.Date, true
	case "area":
		return r.Area, true
	case "italian_stays", "stays_italians":
		return r.ItalianStays, true
	case "foreign_stays", "stays_foreigners":
		return r.ForeignStays, true
	case "total_stays":
		return r.TotalStays, true
	}
	v, ok := r.Extra[name]
	return v, ok
}

// ExtraColumns returns the non-canonical column names of the row in a
// deterministic (sorted) order.
func (r Row) ExtraColumns() []string {
	cols := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// CentralTendencyRow summarizes total stays per area.
type CentralTendencyRow struct {
	Area   string  `json:"area"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
}

// SeasonalityRow is the per-month average of the three stay series.
// Year is set only in the per-year grouping variant.
type SeasonalityRow struct {
	Year          *string `json:"year,omitempty"`
	MonthNum      string  `json:"month_num"`
	ItalianAvg    float64 `json:"italian_avg"`
	ForeignersAvg float64 `json:"foreigners_avg"`
	TotalAvg      float64 `json:"total_avg"`
}

// DominanceRow holds the italians-to-foreigners stay ratio per area.
// Ratio is nil when there are no foreign stays; the shares are nil when
// the total is zero.
type DominanceRow struct {
	Area                string   `json:"area"`
	Italians            float64  `json:"italians"`
	Foreigners          float64  `json:"foreigners"`
	Ratio               *float64 `json:"ratio"`
	ItalianSharePercent *float64 `json:"italianSharePercent"`
	ForeignSharePercent *float64 `json:"foreignSharePercent"`
}

// KPIBundle carries the headline figures of the Tuscany-wide monthly
// series. All fields are nil when the dataset is empty.
type KPIBundle struct {
	TotalTouristStays   *float64 `json:"totalTouristStays"`
	AverageMonthlyStays *float64 `json:"averageMonthlyStays"`
	MaxMonthlyStays     *float64 `json:"maxMonthlyStays"`
	MaxMonthlyLabel     *string  `json:"maxMonthlyLabel"`
	MinMonthlyStays     *float64 `json:"minMonthlyStays"`
	MinMonthlyLabel     *string  `json:"minMonthlyLabel"`
}

// CorrelationMatrix is a square matrix of pairwise coefficients over an
// ordered column set. A nil cell means the coefficient is undefined for
// that pair (e.g. zero variance).
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// VariableSummary is the descriptive-statistics row for one numeric
// column of the dataset.
type VariableSummary struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}
