// Command export-csv fetches the upstream dataset once, normalizes it
// and writes the canonical rows to a CSV file.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tourstats/internal/tourism"
	"tourstats/internal/upstream"
	"tourstats/pkg/models"
	"tourstats/pkg/utils"
)

func main() {
	out := flag.String("out", "data/tourism_rows.csv", "output CSV path for normalized rows")
	flag.Parse()

	cfg := utils.Load()
	if cfg.UpstreamURL == "" {
		log.Fatal("TOURISM_UPSTREAM_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamToken)
	env, err := client.Fetch(ctx)
	if err != nil {
		log.Fatalf("fetch failed: %v", err)
	}

	rows, err := tourism.NormalizeAll(env)
	if err != nil {
		log.Fatalf("normalize failed: %v", err)
	}

	if err := writeRows(*out, rows); err != nil {
		log.Fatalf("export failed: %v", err)
	}
	log.Printf("exported %d rows to %s", len(rows), *out)
}

func writeRows(outPath string, rows []models.Row) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"year", "month_num", "month", "date", "area", "italian_stays", "foreign_stays", "total_stays"}); err != nil {
		return err
	}

	for _, r := range rows {
		date := ""
		if r.Date != nil {
			date = *r.Date
		}
		record := []string{
			r.Year, r.MonthNum, r.Month, date, r.Area,
			strconv.FormatFloat(r.ItalianStays, 'f', -1, 64),
			strconv.FormatFloat(r.ForeignStays, 'f', -1, 64),
			strconv.FormatFloat(r.TotalStays, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
