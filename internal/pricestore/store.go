// Package pricestore persists raw-material prices in a SQL database. SQLite
// (pure Go driver) and Postgres (pgx) are supported; the DSN picks the
// driver.
package pricestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/multierr"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/material"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "pgx"
)

// ErrEmptyDSN is returned by Open when no database is configured.
var ErrEmptyDSN = errors.New("price store DSN is empty")

// Price is one stored raw-material price.
type Price struct {
	Compound  string
	Price     float64
	UpdatedAt time.Time
}

// Store reads and writes the material_prices table.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open connects to the database named by dsn and makes sure the price table
// exists. DSNs starting with postgres:// or postgresql:// use Postgres;
// anything else is a SQLite path, optionally prefixed with sqlite://.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	driver, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if driver == driverSQLite && source != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(source), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == driverSQLite {
		// A single connection keeps :memory: databases alive and avoids
		// SQLITE_BUSY between writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &Store{db: db, driver: driver, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Price store opened.", "driver", driver)
	return s, nil
}

func parseDSN(dsn string) (driver, source string, err error) {
	switch {
	case dsn == "":
		return "", "", ErrEmptyDSN
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return driverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return driverSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	default:
		return driverSQLite, dsn, nil
	}
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the price table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS material_prices (
		compound TEXT PRIMARY KEY,
		price DOUBLE PRECISION NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create material_prices table: %w", err)
	}
	return nil
}

// Save upserts prices in one transaction. All prices are validated before
// anything is written.
func (s *Store) Save(ctx context.Context, prices ...Price) (retErr error) {
	var errs error
	for _, p := range prices {
		if p.Compound == "" {
			errs = multierr.Append(errs, errors.New("price entry without compound"))
			continue
		}
		if err := material.ValidatePrice(p.Compound, p.Price); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return errs
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO material_prices (compound, price, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (compound) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at`))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range prices {
		at := p.UpdatedAt
		if at.IsZero() {
			at = s.now()
		}
		if _, err := stmt.ExecContext(ctx, p.Compound, p.Price, at.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("upsert %q: %w", p.Compound, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Saved prices.", "count", len(prices))
	return nil
}

// Load returns all stored prices ordered by compound.
func (s *Store) Load(ctx context.Context) ([]Price, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT compound, price, updated_at FROM material_prices ORDER BY compound`)
	if err != nil {
		return nil, fmt.Errorf("select prices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Price
	for rows.Next() {
		var (
			p  Price
			at string
		)
		if err := rows.Scan(&p.Compound, &p.Price, &at); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("decode updated_at of %q: %w", p.Compound, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LoadInto refreshes reg with every stored price and returns how many were
// applied.
func (s *Store) LoadInto(ctx context.Context, reg *material.Registry) (int, error) {
	prices, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range prices {
		if err := reg.SetPrice(p.Compound, p.Price); err != nil {
			return 0, err
		}
	}
	return len(prices), nil
}

// FromRegistry lists the priced materials of reg as storable prices.
func FromRegistry(reg *material.Registry) []Price {
	var out []Price
	for _, name := range reg.Names() {
		if price, err := reg.Lookup(name); err == nil {
			out = append(out, Price{Compound: name, Price: price})
		}
	}
	return out
}

// rebind rewrites ? placeholders to the $n form Postgres expects.
func (s *Store) rebind(query string) string {
	if s.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
