package tourism

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tourstats/pkg/models"
)

// keyMap renames the upstream Italian / abbreviated field names onto
// canonical English ones. Keys absent from the table pass through
// unchanged, so unexpected upstream columns survive normalization.
var keyMap = map[string]string{
	"anno":                       "year",
	"mese":                       "month_num",
	"data":                       "date",
	"ambito::filter":             "area",
	"comune":                     "municipality",
	"comune::filter":             "municipality",
	"arrivi_italiani":            "arrivals_italians",
	"arrivi_stranieri":           "arrivals_foreigners",
	"arrivi_totali":              "total_arrivals",
	"presenze_italiane":          "stays_italians",
	"presenze_straniere":         "stays_foreigners",
	"presenze_totali":            "total_stays",
	"permanenza_media_italiani":  "avg_stay_italians",
	"permanenza_media_stranieri": "avg_stay_foreigners",
	"permanenza_media":           "avg_stay_total",
	"posti_letto":                "beds",
	"camere":                     "rooms",
	"esercizi":                   "establishments",
	"tasso_occupazione":          "occupancy_rate",
	"intensita_turistica":        "tourism_intensity",
	"indice_stagionalita":        "seasonality_index",
}

// consumed lists the renamed keys that are lifted into typed Row fields
// and therefore must not be duplicated into Extra.
var consumed = map[string]bool{
	"year":             true,
	"month_num":        true,
	"date":             true,
	"area":             true,
	"ambito":           true,
	"stays_italians":   true,
	"stays_foreigners": true,
	"total_stays":      true,
}

// EnvelopeRows validates that the envelope exposes a rows sequence of
// flat records and returns it. This is the only place normalization can
// fail: missing optional fields never do.
func EnvelopeRows(env models.Envelope) ([]map[string]any, error) {
	raw, ok := env["rows"]
	if !ok {
		return nil, fmt.Errorf("%w: missing rows key", ErrInvalidEnvelope)
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: rows is %T, want array", ErrInvalidEnvelope, raw)
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// NormalizeAll maps every raw record onto the canonical row schema.
func NormalizeAll(env models.Envelope) ([]models.Row, error) {
	records, err := EnvelopeRows(env)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Normalize(rec))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows after normalization", ErrInvalidEnvelope)
	}
	return rows, nil
}

// Normalize maps one raw record onto the canonical row. It is total:
// missing optional fields fall back to defaults instead of failing.
func Normalize(raw map[string]any) models.Row {
	renamed := make(map[string]any, len(raw))
	for k, v := range raw {
		if canon, ok := keyMap[k]; ok {
			// the ::filter variant wins when both spellings are present
			if _, exists := renamed[canon]; exists && !strings.Contains(k, "::filter") {
				continue
			}
			renamed[canon] = v
		} else {
			renamed[k] = v
		}
	}

	row := models.Row{
		Year:     stringField(renamed["year"]),
		MonthNum: padMonth(renamed["month_num"]),
		Area:     areaOf(renamed),
	}

	if d, ok := parseDate(renamed["date"]); ok {
		iso := d.Format("2006-01-02")
		row.Date = &iso
		row.Month = d.Format("2006-01")
	} else {
		row.Month = row.Year + "-" + row.MonthNum
	}

	row.ItalianStays = numericField(renamed["stays_italians"])
	row.ForeignStays = numericField(renamed["stays_foreigners"])
	row.TotalStays = row.ItalianStays + row.ForeignStays

	extra := make(map[string]any)
	for k, v := range renamed {
		if !consumed[k] {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		row.Extra = extra
	}
	return row
}

// areaOf applies the fallback chain ambito::filter -> ambito -> "Unknown".
// The keyMap already renamed ambito::filter to area.
func areaOf(renamed map[string]any) string {
	if s := stringField(renamed["area"]); s != "" {
		return s
	}
	if s := stringField(renamed["ambito"]); s != "" {
		return s
	}
	return "Unknown"
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// padMonth zero-pads a numeric month value into "01".."12".
func padMonth(v any) string {
	s := stringField(v)
	if s == "" {
		return ""
	}
	if n, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%02d", n)
	}
	return s
}

// numericField coerces a raw value to a number, defaulting to 0 when
// the field is absent or not parseable.
func numericField(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "02/01/2006"}

func parseDate(v any) (time.Time, bool) {
	s := stringField(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
