// Package sqlite provides the SQLite flavour of the account store on top of
// modernc.org/sqlite, so no cgo toolchain is required.
package sqlite

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/sqlstore"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// NewStore opens dsn (a file path or ":memory:") with foreign keys enforced.
func NewStore(dsn string) (*sqlstore.Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection: pragmas are per connection and ":memory:" databases
	// are private to the connection that created them.
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, Dialect()), nil
}

// Dialect describes SQLite to the generic store.
func Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Flavor:   sqlbuilder.SQLite,
		MapError: MapError,
		Migrate:  Migrate,
	}
}

// MapError converts constraint violations to store sentinels.
func MapError(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return errors.Join(store.ErrAlreadyExists, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return errors.Join(store.ErrConstraint, err)
	}
	return err
}
