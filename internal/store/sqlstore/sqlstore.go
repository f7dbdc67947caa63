// Package sqlstore is a store.Store over PostgreSQL or SQLite, accessed
// through sqlx. The schema is embedded and applied with golang-migrate on
// Open.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pkg/errors"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect selects the SQL driver and migration set.
type Dialect string

// Dialects.
const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// ParseDialect accepts "postgres", "postgresql", "sqlite" and "sqlite3".
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unknown sql dialect %q", s)
}

// querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	Rebind(query string) string
}

// Store implements store.Store on a SQL database.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	now     func() time.Time
}

// Open connects to dsn, applies pending migrations and returns the store.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	if dialect == SQLite {
		dsn = withForeignKeys(dsn)
	}
	db, err := sqlx.Open(string(dialect), dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", dialect)
	}
	if dialect == SQLite {
		// A single connection avoids SQLITE_BUSY between concurrent writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "connecting to %s database", dialect)
	}
	if err := Migrate(db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, dialect: dialect, now: time.Now}, nil
}

// Migrate applies every pending up migration for dialect.
func Migrate(db *sqlx.DB, dialect Dialect) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return errors.Wrap(err, "loading migrations")
	}

	var drv database.Driver
	switch dialect {
	case Postgres:
		drv, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case SQLite:
		drv, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	default:
		return fmt.Errorf("unknown sql dialect %q", dialect)
	}
	if err != nil {
		return errors.Wrap(err, "initializing migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), drv)
	if err != nil {
		return errors.Wrap(err, "initializing migrations")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "applying migrations")
	}
	return nil
}

// SetNow overrides the clock used for timestamps (for testing).
func (s *Store) SetNow(fn func() time.Time) { s.now = fn }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// stamp returns the current time at the precision both dialects keep.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// withTx runs fn in a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(q querier) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = errors.Wrap(tx.Commit(), "committing transaction")
	}()
	return fn(tx)
}

// forUpdate locks the selected row on dialects that support it.
func (s *Store) forUpdate() string {
	if s.dialect == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}
