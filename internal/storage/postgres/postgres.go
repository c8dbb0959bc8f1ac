// Package postgres implements storage.Source on a relational schema through sqlx.
//
// Two database/sql drivers are supported: "postgres" (lib/pq) and "pgx"
// (jackc/pgx stdlib). Both speak the same SQL, so the driver is only a
// deployment choice.
package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/airopshq/airops/internal/storage"
)

const (
	DriverPQ  = "postgres"
	DriverPgx = "pgx"

	// undefinedTable is the SQLSTATE for a missing relation
	undefinedTable = "42P01"
)

// Config holds connection settings
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Source reads revenue and feedback from PostgreSQL
type Source struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ storage.Source = (*Source)(nil)

// Open connects and pings the database
func Open(ctx context.Context, cfg Config) (*Source, error) {
	driverName := cfg.Driver
	if driverName == "" {
		driverName = DriverPQ
	}
	if driverName != DriverPQ && driverName != DriverPgx {
		return nil, fmt.Errorf("unsupported postgres driver: %s", driverName)
	}

	db, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, wrapErr("ping", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection pool
func NewWithDB(db *sqlx.DB) *Source {
	return &Source{db: db, now: time.Now}
}

// DB exposes the underlying pool
func (s *Source) DB() *sqlx.DB {
	return s.db
}

// Ping implements storage.Source
func (s *Source) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrapErr("ping", err)
	}
	return nil
}

// Close implements storage.Source
func (s *Source) Close() error {
	return s.db.Close()
}

// wrapErr maps driver errors onto the storage sentinels
func wrapErr(op string, err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrSchemaMissing, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedTable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == undefinedTable
	}

	return false
}
