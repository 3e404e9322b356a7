package loader

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"fashionetl/internal/db"
	"fashionetl/internal/model"
)

var validTable = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dbColumns mirrors model.Columns in lower case.
var dbColumns = []string{"title", "price", "rating", "size", "gender", "colors", "timestamp", "image"}

var columnTypes = map[string][]string{
	db.DriverPostgres: {"TEXT NOT NULL", "DOUBLE PRECISION NOT NULL", "DOUBLE PRECISION", "TEXT", "TEXT", "TEXT", "TIMESTAMPTZ NOT NULL", "TEXT"},
	db.DriverSQLite:   {"TEXT NOT NULL", "REAL NOT NULL", "REAL", "TEXT", "TEXT", "TEXT", "TEXT NOT NULL", "TEXT"},
}

// DatabaseSink replaces Table in the database at URL with the table rows.
type DatabaseSink struct {
	URL   string
	Table string
}

var _ Sink = (*DatabaseSink)(nil)

func (s *DatabaseSink) Name() string { return "Database" }

func (s *DatabaseSink) Load(ctx context.Context, table model.Table) Outcome {
	return outcome(s.Name(), table.Len(), s.write(ctx, table))
}

func (s *DatabaseSink) write(ctx context.Context, table model.Table) error {
	if s.URL == "" {
		return unavailable("no connection string configured")
	}
	if !validTable.MatchString(s.Table) {
		return &SchemaError{Table: s.Table, Err: errors.New("invalid table name")}
	}

	driver, _, err := db.Resolve(s.URL)
	if err != nil {
		if errors.Is(err, db.ErrUnsupportedScheme) {
			return unavailable(err.Error())
		}
		return &ConnectionError{Err: err}
	}

	if driver == db.DriverPostgres {
		return s.writePostgres(ctx, table)
	}
	return s.writeSQL(ctx, table)
}

func createTable(driver, table string) string {
	types := columnTypes[driver]
	defs := make([]string, len(dbColumns))
	for i, c := range dbColumns {
		defs[i] = quote(c) + " " + types[i]
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(table), strings.Join(defs, ", "))
}

func quote(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

func (s *DatabaseSink) writePostgres(ctx context.Context, table model.Table) error {
	conn, err := db.NewPgx(ctx, s.URL)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+quote(s.Table)); err != nil {
		return &SchemaError{Table: s.Table, Err: err}
	}
	if _, err := tx.Exec(ctx, createTable(db.DriverPostgres, s.Table)); err != nil {
		return &SchemaError{Table: s.Table, Err: err}
	}

	rows := table.Rows
	_, err = tx.CopyFrom(ctx, pgx.Identifier{s.Table}, dbColumns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{r.Title, r.Price, r.Rating, r.Size, r.Gender, r.Colors, r.Timestamp, r.Image}, nil
	}))
	if err != nil {
		return &SchemaError{Table: s.Table, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

// writeSQL covers database/sql drivers without a bulk copy protocol.
func (s *DatabaseSink) writeSQL(ctx context.Context, table model.Table) error {
	conn, driver, err := db.New(s.URL)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return &ConnectionError{Err: err}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(s.Table)); err != nil {
		return &SchemaError{Table: s.Table, Err: err}
	}
	if _, err := tx.ExecContext(ctx, createTable(driver, s.Table)); err != nil {
		return &SchemaError{Table: s.Table, Err: err}
	}

	quoted := make([]string, len(dbColumns))
	params := make([]string, len(dbColumns))
	for i, c := range dbColumns {
		quoted[i] = quote(c)
		params[i] = db.Placeholder(driver, i+1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(s.Table), strings.Join(quoted, ", "), strings.Join(params, ", ")))
	if err != nil {
		return &SchemaError{Table: s.Table, Err: err}
	}
	defer stmt.Close()

	for _, r := range table.Rows {
		var rating any
		if r.Rating != nil {
			rating = *r.Rating
		}
		_, err := stmt.ExecContext(ctx, r.Title, r.Price, rating, r.Size, r.Gender, r.Colors,
			r.Timestamp.Format(model.TimestampLayout), r.Image)
		if err != nil {
			return &SchemaError{Table: s.Table, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}
