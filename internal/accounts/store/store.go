package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/pkg/queryx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConstraint reports a write rejected by referential integrity,
	// e.g. deleting an account that still owns collections.
	ErrConstraint = errors.New("store: constraint violation")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a Tx-scoped Store cannot start another transaction.
//
// The store applies no business rules.
type Store interface {
	Accounts() Accounts
	AccountMeta() AccountMeta
	Collections() Collections

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error or
	// ctx is cancelled the transaction is rolled back, otherwise it is
	// committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// Insert stores a new account and sets its ID and timestamps. A taken
	// login fails with ErrAlreadyExists.
	Insert(ctx context.Context, a *domain.Account) error

	// Update writes every column of a and bumps updated_date. Meta is not
	// touched; use AccountMeta.
	Update(ctx context.Context, a *domain.Account) error

	// Delete removes the account and its meta. Fails with ErrConstraint
	// while other rows still reference it.
	Delete(ctx context.Context, id int64) error

	// Get returns an account with its meta loaded.
	Get(ctx context.Context, id int64) (domain.Account, error)

	// GetByLogin is used by the login steps.
	GetByLogin(ctx context.Context, login string) (domain.Account, error)

	// Select returns accounts matching q with meta loaded.
	Select(ctx context.Context, q queryx.Query) ([]domain.Account, error)

	// Count ignores q's ordering and pagination.
	Count(ctx context.Context, q queryx.Query) (int, error)

	// Exists ignores q's ordering and pagination.
	Exists(ctx context.Context, q queryx.Query) (bool, error)
}

type AccountMeta interface {
	// List returns every meta value of one account.
	List(ctx context.Context, accountID int64) (domain.Meta, error)

	// ListFor batches List for several accounts.
	ListFor(ctx context.Context, accountIDs []int64) (map[int64]domain.Meta, error)

	// Set inserts or replaces one key.
	Set(ctx context.Context, accountID int64, key, value string) error

	// Delete removes one key; a missing key is not an error.
	Delete(ctx context.Context, accountID int64, key string) error

	// Values returns every stored value of key across all accounts.
	Values(ctx context.Context, key string) ([]string, error)
}

type Collections interface {
	// Insert stores a collection owned by an account, with its meta.
	Insert(ctx context.Context, c *domain.Collection) error

	// Get returns a collection with its meta loaded.
	Get(ctx context.Context, id int64) (domain.Collection, error)

	// CountByAccount counts the collections an account owns.
	CountByAccount(ctx context.Context, accountID int64) (int, error)
}
