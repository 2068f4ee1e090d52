// Package postgres provides the PostgreSQL flavour of the account store on
// top of lib/pq.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/sqlstore"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// NewStore connects to dsn and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, Dialect()), nil
}

// Dialect describes PostgreSQL to the generic store.
func Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Flavor:   sqlbuilder.PostgreSQL,
		MapError: MapError,
		Migrate:  Migrate,
	}
}

// MapError converts constraint violations to store sentinels.
func MapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case codeUniqueViolation:
		return errors.Join(store.ErrAlreadyExists, err)
	case codeForeignKeyViolation:
		return errors.Join(store.ErrConstraint, err)
	}
	return err
}
