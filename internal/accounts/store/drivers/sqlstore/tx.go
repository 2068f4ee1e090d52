package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/jmoiron/sqlx"
)

type txStore struct {
	tx   *sqlx.Tx
	conn conn
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits or rolls back; the DB stays open

// Ping is a no-op for transactions, the connection is already held.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Accounts() store.Accounts       { return &accountsRepo{conn: t.conn} }
func (t *txStore) AccountMeta() store.AccountMeta { return &metaRepo{conn: t.conn} }
func (t *txStore) Collections() store.Collections { return &collectionsRepo{conn: t.conn} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
