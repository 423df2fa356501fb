package stats

import (
	"testing"

	"tourstats/pkg/models"
)

func stayRow(area string, italian, foreign float64) models.Row {
	return models.Row{
		Area:         area,
		ItalianStays: italian,
		ForeignStays: foreign,
		TotalStays:   italian + foreign,
	}
}

func TestCentralTendencyPerArea(t *testing.T) {
	rows := []models.Row{
		stayRow("Pisa", 100, 0),   // total 100
		stayRow("Pisa", 200, 100), // total 300
		stayRow("Siena", 50, 0),
	}

	out := CentralTendency(rows)
	if len(out) != 2 {
		t.Fatalf("groups: got %d, want 2", len(out))
	}

	pisa := out[0]
	if pisa.Area != "Pisa" {
		t.Fatalf("first area: got %q, want Pisa (sorted)", pisa.Area)
	}
	if pisa.Mean != 200 {
		t.Errorf("Pisa mean: got %v, want 200", pisa.Mean)
	}
	if pisa.Median != 200 {
		t.Errorf("Pisa median: got %v, want 200", pisa.Median)
	}
	// sample std of {100, 300} = sqrt(20000) ~ 141.42
	if pisa.Std != 141.42 {
		t.Errorf("Pisa std: got %v, want 141.42", pisa.Std)
	}
}

// a single-row group is kept and its deviation is pinned to 0
func TestCentralTendencySingleRowGroup(t *testing.T) {
	out := CentralTendency([]models.Row{stayRow("Lucca", 80, 20)})
	if len(out) != 1 {
		t.Fatalf("groups: got %d, want 1", len(out))
	}
	if out[0].Std != 0 {
		t.Errorf("single-sample std: got %v, want 0", out[0].Std)
	}
	if out[0].Mean != 100 {
		t.Errorf("mean: got %v, want 100", out[0].Mean)
	}
}
