// Package fetchlog keeps an audit trail of upstream fetch attempts in
// sqlite, so operators can see when the dataset was last refreshed and
// why a refresh failed.
package fetchlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Record struct {
	ID        string    `json:"id"`
	OK        bool      `json:"ok"`
	RowCount  int       `json:"row_count"`
	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Record(ctx context.Context, rec Record) error {
	ok := 0
	if rec.OK {
		ok = 1
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO fetch_log (id, ok, row_count, error, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, ok, rec.RowCount, rec.Error, rec.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert fetch record: %w", err)
	}
	return nil
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, ok, row_count, error, fetched_at
		FROM fetch_log
		ORDER BY fetched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list fetch log: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var ok int
		if err := rows.Scan(&rec.ID, &ok, &rec.RowCount, &rec.Error, &rec.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan fetch record: %w", err)
		}
		rec.OK = ok == 1
		out = append(out, rec)
	}
	return out, rows.Err()
}
