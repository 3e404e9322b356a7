package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fashionetl/internal/db"
	"fashionetl/internal/model"
)

// timeLayout sorts lexically for UTC times.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunRepository keeps the etl_runs audit table. Columns are TEXT/INTEGER
// only so the same statements work on Postgres and SQLite.
type RunRepository struct {
	DB     *sql.DB
	Driver string
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS etl_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			pages INTEGER NOT NULL,
			extracted INTEGER NOT NULL,
			transformed INTEGER NOT NULL,
			partial INTEGER NOT NULL,
			sinks TEXT NOT NULL,
			error TEXT NOT NULL
		)
	`)
	return err
}

func (r *RunRepository) Save(ctx context.Context, run model.Run) error {
	sinks, err := json.Marshal(run.Sinks)
	if err != nil {
		return err
	}
	partial := 0
	if run.Partial {
		partial = 1
	}

	_, err = r.DB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO etl_runs
		(id, started_at, finished_at, pages, extracted, transformed, partial, sinks, error)
		VALUES (%s)
	`, r.placeholders(9)),
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Pages, run.Extracted, run.Transformed, partial, string(sinks), run.Error,
	)
	return err
}

// List returns the most recent runs first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]model.Run, error) {
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, started_at, finished_at, pages, extracted, transformed, partial, sinks, error
		FROM etl_runs
		ORDER BY started_at DESC
		LIMIT %s
	`, db.Placeholder(r.Driver, 1)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Run
	for rows.Next() {
		var run model.Run
		var started, finished, sinks string
		var partial int
		if err := rows.Scan(&run.ID, &started, &finished, &run.Pages, &run.Extracted, &run.Transformed, &partial, &sinks, &run.Error); err != nil {
			return nil, err
		}
		run.Partial = partial == 1
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sinks), &run.Sinks); err != nil {
			return nil, err
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

func (r *RunRepository) placeholders(n int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = db.Placeholder(r.Driver, i+1)
	}
	return strings.Join(p, ", ")
}
