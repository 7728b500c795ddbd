// Package db opens the database handle and applies the schema.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Open connects and pings. The caller owns the returned pool and closes it.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	dsn := opts.DSN
	maxOpen := opts.MaxOpenConns
	switch opts.Driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
		// One connection: in-memory databases are per connection, and
		// SQLite serializes writers anyway.
		maxOpen = 1
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	conn, err := sqlx.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if maxOpen > 0 {
		conn.SetMaxOpenConns(maxOpen)
	}
	if opts.ConnMaxLifetime > 0 && opts.Driver == DriverPostgres {
		conn.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return conn, nil
}

// sqliteDSN turns on foreign keys for every connection the driver opens.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}
