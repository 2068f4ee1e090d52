// Package sqlstore implements store.Store on any database/sql driver using
// sqlx for execution and go-sqlbuilder for statement building. The sqlite
// and postgres drivers supply a Dialect and their own migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// Dialect captures what differs between SQL engines.
type Dialect struct {
	// Flavor selects placeholder style and quoting.
	Flavor sqlbuilder.Flavor

	// MapError translates engine specific errors (unique and foreign key
	// violations) to store sentinels. Unrecognised errors are returned as is.
	MapError func(error) error

	// Migrate applies the engine's embedded migrations.
	Migrate func(db *sql.DB) error
}

type Store struct {
	db  *sqlx.DB
	d   *Dialect
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New wraps an open database.
func New(db *sqlx.DB, d Dialect) *Store {
	return &Store{db: db, d: &d, now: time.Now}
}

// SetClock overrides the time source used for created/updated dates.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// DB exposes the underlying handle for drivers and tests.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.d.Migrate == nil {
		return errors.New("sqlstore: dialect has no migrations")
	}
	return s.d.Migrate(s.db.DB)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store. The
// transaction is rolled back by database/sql if ctx is cancelled.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: begin: %w", err)
	}
	return &txStore{tx: tx, conn: s.conn(tx)}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Safe to call even after commit.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	// A cancelled caller must not get a half finished operation committed.
	if err := ctx.Err(); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) conn(ext sqlx.ExtContext) conn {
	return conn{ext: ext, d: s.d, now: s.now}
}

func (s *Store) Accounts() store.Accounts       { return &accountsRepo{conn: s.conn(s.db)} }
func (s *Store) AccountMeta() store.AccountMeta { return &metaRepo{conn: s.conn(s.db)} }
func (s *Store) Collections() store.Collections { return &collectionsRepo{conn: s.conn(s.db)} }

// conn is what every repository needs: somewhere to run statements, the
// dialect, and a clock.
type conn struct {
	ext sqlx.ExtContext
	d   *Dialect
	now func() time.Time
}

func (c conn) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if c.d.MapError != nil {
		return c.d.MapError(err)
	}
	return err
}

// exec runs a statement and reports ErrNotFound when it touched no rows.
func (c conn) execAffecting(ctx context.Context, query string, args ...any) error {
	res, err := c.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return c.mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c conn) nowUnix() int64 { return c.now().UTC().Unix() }

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}
