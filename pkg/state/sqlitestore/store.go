// Package sqlitestore implements state.Persistence on top of database/sql and
// the mattn/go-sqlite3 driver.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-formsync/pkg/state"
)

const defaultTable = "formsync_remembered"

// Store persists remembered values in a single sqlite table.
type Store struct {
	db    *sql.DB
	table string
	now   state.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithTable overrides the table name.
func WithTable(name string) Option {
	return func(s *Store) {
		if name = strings.TrimSpace(name); name != "" {
			s.table = name
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(clock state.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// Open opens (or creates) the sqlite database at dsn and prepares the table.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %q: %w", dsn, err)
	}
	if strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	store, err := New(ctx, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle and creates the table when missing.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("sqlitestore: db is required")
	}
	s := &Store{db: db, table: defaultTable, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("sqlitestore: create table %q: %w", s.table, err)
	}
	return nil
}

// Get implements state.Persistence. Expired rows read as absent and are
// removed.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, state.ErrKeyRequired
	}

	var (
		value     string
		expiresAt int64
	)
	query := fmt.Sprintf(`SELECT value, expires_at FROM %q WHERE key = ?`, s.table)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlitestore: get %q: %w", key, err)
	}

	if s.now().UnixNano() >= expiresAt {
		del := fmt.Sprintf(`DELETE FROM %q WHERE key = ? AND expires_at = ?`, s.table)
		if _, err := s.db.ExecContext(ctx, del, key, expiresAt); err != nil {
			return "", false, fmt.Errorf("sqlitestore: expire %q: %w", key, err)
		}
		return "", false, nil
	}
	return value, true, nil
}

// Set implements state.Persistence.
func (s *Store) Set(ctx context.Context, key, value string, ttlDays int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return state.ErrKeyRequired
	}
	expiresAt := state.ExpiresAt(s.now(), ttlDays).UnixNano()
	query := fmt.Sprintf(`INSERT INTO %q (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("sqlitestore: set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
