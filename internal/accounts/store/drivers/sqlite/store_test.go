package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/sqlstore"
	"github.com/aussiebroadwan/memo/pkg/queryx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newAccount(login string, role domain.Role) *domain.Account {
	return &domain.Account{
		Role:            role,
		Login:           login,
		FirstName:       "First",
		LastName:        "Last",
		PassHash:        "hash",
		MFAKeyEncrypted: "mfa",
		JTIEncrypted:    "jti",
	}
}

func TestAccountsInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.SetClock(func() time.Time { return time.Unix(1700000000, 0) })

	acc := newAccount("alice", domain.RoleAdmin)
	require.NoError(t, s.Accounts().Insert(ctx, acc))
	require.Equal(t, int64(1), acc.ID)
	require.Equal(t, int64(1700000000), acc.CreatedDate.Unix())

	got, err := s.Accounts().Get(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Login)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.False(t, got.PassAccepted)
	require.True(t, got.SuspendedDate.IsZero())
	require.Empty(t, got.Meta)

	byLogin, err := s.Accounts().GetByLogin(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, acc.ID, byLogin.ID)

	_, err = s.Accounts().Get(ctx, 99)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Accounts().GetByLogin(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountsDuplicateLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Accounts().Insert(ctx, newAccount("alice", domain.RoleAdmin)))

	err := s.Accounts().Insert(ctx, newAccount("alice", domain.RoleNone))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestAccountsUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := newAccount("alice", domain.RoleNone)
	require.NoError(t, s.Accounts().Insert(ctx, acc))

	suspended := time.Unix(1800000000, 0).UTC()
	acc.Role = domain.RoleEditor
	acc.PassAttempts = 3
	acc.PassAccepted = true
	acc.SuspendedDate = suspended
	acc.FirstName = "Alicia"
	require.NoError(t, s.Accounts().Update(ctx, acc))

	got, err := s.Accounts().Get(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleEditor, got.Role)
	require.Equal(t, 3, got.PassAttempts)
	require.True(t, got.PassAccepted)
	require.Equal(t, suspended, got.SuspendedDate)
	require.Equal(t, "Alicia", got.FirstName)

	missing := newAccount("ghost", domain.RoleNone)
	missing.ID = 42
	require.ErrorIs(t, s.Accounts().Update(ctx, missing), store.ErrNotFound)
}

func TestAccountMeta(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := newAccount("alice", domain.RoleReader)
	require.NoError(t, s.Accounts().Insert(ctx, acc))

	meta := s.AccountMeta()
	require.NoError(t, meta.Set(ctx, acc.ID, domain.MetaSummary, "hello"))
	require.NoError(t, meta.Set(ctx, acc.ID, domain.MetaSummary, "updated"))
	require.NoError(t, meta.Set(ctx, acc.ID, domain.MetaContacts, "@alice"))

	got, err := meta.List(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Meta{domain.MetaSummary: "updated", domain.MetaContacts: "@alice"}, got)

	require.NoError(t, meta.Delete(ctx, acc.ID, domain.MetaContacts))

	loaded, err := s.Accounts().Get(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Meta{domain.MetaSummary: "updated"}, loaded.Meta)

	values, err := meta.Values(ctx, domain.MetaSummary)
	require.NoError(t, err)
	require.Equal(t, []string{"updated"}, values)

	err = meta.Set(ctx, 999, domain.MetaSummary, "orphan")
	require.ErrorIs(t, err, store.ErrConstraint)
}

func TestAccountsDeleteCascadesMeta(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := newAccount("alice", domain.RoleReader)
	require.NoError(t, s.Accounts().Insert(ctx, acc))
	require.NoError(t, s.AccountMeta().Set(ctx, acc.ID, domain.MetaUserpic, "a.jpg"))

	require.NoError(t, s.Accounts().Delete(ctx, acc.ID))
	require.ErrorIs(t, s.Accounts().Delete(ctx, acc.ID), store.ErrNotFound)

	values, err := s.AccountMeta().Values(ctx, domain.MetaUserpic)
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestAccountsDeleteRestrictedByCollections(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := newAccount("alice", domain.RoleWriter)
	require.NoError(t, s.Accounts().Insert(ctx, acc))

	col := &domain.Collection{
		AccountID: acc.ID,
		Name:      "holiday",
		Meta:      domain.Meta{domain.MetaCollectionSummary: "beach", "ignored": "x"},
	}
	require.NoError(t, s.Collections().Insert(ctx, col))

	got, err := s.Collections().Get(ctx, col.ID)
	require.NoError(t, err)
	require.Equal(t, "holiday", got.Name)
	require.Equal(t, domain.Meta{domain.MetaCollectionSummary: "beach"}, got.Meta)

	n, err := s.Collections().CountByAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.ErrorIs(t, s.Accounts().Delete(ctx, acc.ID), store.ErrConstraint)
}

func TestAccountsSelectCountExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, a := range []struct {
		login string
		role  domain.Role
		first string
	}{
		{"alice", domain.RoleAdmin, "Alice"},
		{"bob", domain.RoleReader, "Bob"},
		{"carol", domain.RoleReader, "Carol"},
		{"dave", domain.RoleNone, "Dave"},
	} {
		acc := newAccount(a.login, a.role)
		acc.FirstName = a.first
		require.NoError(t, s.Accounts().Insert(ctx, acc))
	}
	require.NoError(t, s.AccountMeta().Set(ctx, 3, domain.MetaSummary, "Photographer"))

	q, err := queryx.CompileList(store.AccountSchema, queryx.Criteria{"user_role": "reader", "limit": "10"})
	require.NoError(t, err)

	list, err := s.Accounts().Select(ctx, q)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "carol", list[0].Login)
	require.Equal(t, "bob", list[1].Login)
	require.Equal(t, "Photographer", list[0].Meta[domain.MetaSummary])

	q, err = queryx.CompileList(store.AccountSchema, queryx.Criteria{"limit": "2", "offset": "1", "order": "asc"})
	require.NoError(t, err)
	list, err = s.Accounts().Select(ctx, q)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(2), list[0].ID)

	q, err = queryx.Compile(store.AccountSchema, queryx.Criteria{"user_summary__ilike": "photo"})
	require.NoError(t, err)
	n, err := s.Accounts().Count(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	q, err = queryx.Compile(store.AccountSchema, queryx.Criteria{"id__gt": "1", "limit": "1"})
	require.NoError(t, err)
	n, err = s.Accounts().Count(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	q, err = queryx.Compile(store.AccountSchema, queryx.Criteria{"user_login": "zed"})
	require.NoError(t, err)
	ok, err := s.Accounts().Exists(ctx, q)
	require.NoError(t, err)
	require.False(t, ok)

	q, err = queryx.Compile(store.AccountSchema, queryx.Criteria{"full_name__ilike": "bob l"})
	require.NoError(t, err)
	ok, err = s.Accounts().Exists(ctx, q)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	errBoom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Accounts().Insert(ctx, newAccount("alice", domain.RoleAdmin)))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.Accounts().GetByLogin(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		acc := newAccount("alice", domain.RoleAdmin)
		if err := tx.Accounts().Insert(ctx, acc); err != nil {
			return err
		}
		return tx.AccountMeta().Set(ctx, acc.ID, domain.MetaSummary, "hi")
	})
	require.NoError(t, err)

	got, err := s.Accounts().GetByLogin(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "hi", got.Meta[domain.MetaSummary])
}

func TestWithTxCancelledContext(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().Insert(ctx, newAccount("alice", domain.RoleAdmin)); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Accounts().GetByLogin(context.Background(), "alice")
	require.ErrorIs(t, err, store.ErrNotFound)
}
