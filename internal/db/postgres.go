package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnsupportedScheme means no driver is linked for the URL scheme.
var ErrUnsupportedScheme = errors.New("unsupported database scheme")

// Resolve maps a connection URL to a database/sql driver name and DSN.
// postgres:// and postgresql:// go to lib/pq unchanged; sqlite://path and
// sqlite:path open a modernc SQLite file.
func Resolve(rawURL string) (driver, dsn string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return DriverPostgres, rawURL, nil
	case "sqlite", "sqlite3":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return "", "", fmt.Errorf("sqlite url %q has no path", rawURL)
		}
		return DriverSQLite, path, nil
	}
	return "", "", fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme)
}

// New opens a database/sql handle for rawURL and returns its driver name.
func New(rawURL string) (*sql.DB, string, error) {
	driver, dsn, err := Resolve(rawURL)
	if err != nil {
		return nil, "", err
	}
	conn, err := sql.Open(driver, dsn)
	return conn, driver, err
}

func NewPgx(ctx context.Context, url string) (*pgx.Conn, error) {
	return pgx.Connect(ctx, url)
}

// Placeholder returns the n-th (1-based) bind parameter for driver.
func Placeholder(driver string, n int) string {
	if driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
