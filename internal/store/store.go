package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a course, lesson or challenge does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrHeartsFull is returned by RefillHearts when hearts are already at the cap.
	ErrHeartsFull = errors.New("store: hearts are already full")
	// ErrNotEnoughPoints is returned by RefillHearts when points do not cover the cost.
	ErrNotEnoughPoints = errors.New("store: not enough points")
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the database named by url and runs auto-migration.
// URLs starting with postgres:// or postgresql:// use Postgres; anything
// else is treated as a SQLite DSN or file path.
func Open(ctx context.Context, url string) (*Store, error) {
	s, err := open(url)
	if err != nil {
		return nil, err
	}

	drv := entsql.OpenDB(s.dialect, s.db)
	migrate, err := schema.NewMigrate(drv)
	if err != nil {
		s.db.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, s)
	if err != nil {
		s.db.Close()
		return nil, err
	}
	s.seq = seq
	return s, nil
}

func open(url string) (*Store, error) {
	if isPostgres(url) {
		db, err := sql.Open("pgx", url)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return &Store{db: db, dialect: dialect.Postgres}, nil
	}

	if !strings.HasPrefix(url, "file:") && url != ":memory:" {
		if err := ensureDir(url); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection and an in-memory database lives only as
	// long as its connection, so SQLite runs on exactly one.
	db.SetMaxOpenConns(1)
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return &Store{db: db, dialect: dialect.SQLite}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// sql returns a statement builder for the store's dialect.
func (s *Store) sql() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// tx runs fn inside a transaction, committing when it returns nil.
func (s *Store) tx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func exec(ctx context.Context, q querier, b entsql.Querier) error {
	query, args := b.Query()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

func queryRow(ctx context.Context, q querier, b entsql.Querier) *sql.Row {
	query, args := b.Query()
	return q.QueryRowContext(ctx, query, args...)
}

func query(ctx context.Context, q querier, b entsql.Querier) (*sql.Rows, error) {
	query, args := b.Query()
	return q.QueryContext(ctx, query, args...)
}

// insertID runs an INSERT ... RETURNING id and returns the new id.
func insertID(ctx context.Context, q querier, b *entsql.InsertBuilder) (int, error) {
	var id int
	if err := queryRow(ctx, q, b.Returning("id")).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func isPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
