package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/memo/internal/accounts/cache"
	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/pkg/queryx"
)

// Fetch returns an account by id, cache first. Store hits refill the cache.
func (s *AccountService) Fetch(ctx context.Context, id int64) (domain.Account, error) {
	acc, err := s.load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.NewError(domain.KindNotFound, domain.LocPath, "user_id")
	}
	if err != nil {
		return domain.Account{}, err
	}
	return acc, nil
}

type ProfileInput struct {
	FirstName string
	LastName  string

	// Meta holds the new value of each editable key. Absent or empty
	// values delete the key.
	Meta map[string]string
}

// UpdateProfile overwrites names and editable meta in one transaction.
func (s *AccountService) UpdateProfile(ctx context.Context, acc *domain.Account, in ProfileInput) error {
	if err := checkNames(in.FirstName, in.LastName); err != nil {
		return err
	}
	if err := checkMeta(in.Meta); err != nil {
		return err
	}

	updated := *acc
	updated.FirstName = in.FirstName
	updated.LastName = in.LastName
	updated.Meta = acc.Meta.Clone()
	if updated.Meta == nil {
		updated.Meta = domain.Meta{}
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().Update(ctx, &updated); err != nil {
			return err
		}

		for _, key := range editableMeta {
			value := in.Meta[key]
			if value == "" {
				if err := tx.AccountMeta().Delete(ctx, updated.ID, key); err != nil {
					return err
				}
				delete(updated.Meta, key)
				continue
			}
			if err := tx.AccountMeta().Set(ctx, updated.ID, key, value); err != nil {
				return err
			}
			updated.Meta[key] = value
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewError(domain.KindNotFound, domain.LocPath, "user_id")
		}
		s.logger(ctx).Error("failed to update profile", slog.Int64("account_id", acc.ID), slog.Any("error", err))
		return err
	}

	*acc = updated
	s.Cache.Invalidate(ctx, acc.ID)
	return nil
}

// ChangeRole sets the account's role. Callers stop admins from demoting
// themselves.
func (s *AccountService) ChangeRole(ctx context.Context, acc *domain.Account, role domain.Role) error {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return domain.NewError(domain.KindValueInvalid, domain.LocBody, "user_role").Wrap(err)
	}

	acc.Role = role
	if err := s.save(ctx, acc); err != nil {
		return err
	}

	s.logger(ctx).Info("account role changed",
		slog.Int64("account_id", acc.ID),
		slog.String("user_role", role.String()),
	)
	return nil
}

// Delete removes the account and its meta. Accounts still referenced by
// other records are locked.
func (s *AccountService) Delete(ctx context.Context, acc *domain.Account) error {
	err := s.Store.Accounts().Delete(ctx, acc.ID)
	switch {
	case errors.Is(err, store.ErrConstraint):
		return domain.NewError(domain.KindValueLocked, domain.LocPath, "user_id").Wrap(err)
	case errors.Is(err, store.ErrNotFound):
		return domain.NewError(domain.KindNotFound, domain.LocPath, "user_id")
	case err != nil:
		s.logger(ctx).Error("failed to delete account", slog.Int64("account_id", acc.ID), slog.Any("error", err))
		return err
	}

	s.Cache.Invalidate(ctx, acc.ID)

	if name, ok := acc.Meta.Get(domain.MetaUserpic); ok {
		if err := s.Files.Delete(files.DirUserpics, name); err != nil {
			s.logger(ctx).Warn("failed to remove userpic", slog.Any("error", err))
		}
	}

	s.logger(ctx).Info("account deleted", slog.Int64("account_id", acc.ID))
	return nil
}

func filterError(err error) error {
	var fe *queryx.FilterError
	if errors.As(err, &fe) {
		return domain.NewError(domain.KindInvalidFilter, domain.LocQuery, fe.Key).Wrap(err)
	}
	return domain.NewError(domain.KindInvalidFilter, domain.LocQuery).Wrap(err)
}

// Search lists accounts matching criteria. A limit is mandatory. Every
// returned account refreshes its cache entry.
func (s *AccountService) Search(ctx context.Context, criteria queryx.Criteria) ([]domain.Account, error) {
	q, err := queryx.CompileList(store.AccountSchema, criteria)
	if err != nil {
		return nil, filterError(err)
	}

	list, err := s.Store.Accounts().Select(ctx, q)
	if err != nil {
		return nil, err
	}

	s.refillAll(ctx, q, list)
	return list, nil
}

// refillAll caches a search result. Like refill, entries that no longer
// match a second run of the query are dropped.
func (s *AccountService) refillAll(ctx context.Context, q queryx.Query, list []domain.Account) {
	if !s.Cache.Enabled() || len(list) == 0 {
		return
	}

	for _, acc := range list {
		s.Cache.Put(ctx, acc)
	}

	current, err := s.Store.Accounts().Select(ctx, q)
	if err != nil {
		s.logger(ctx).Warn("failed to recheck cached accounts", slog.Any("error", err))
	}

	byID := make(map[int64]domain.Account, len(current))
	for _, acc := range current {
		byID[acc.ID] = acc
	}
	for _, acc := range list {
		if cur, ok := byID[acc.ID]; !ok || !cache.SameAccount(acc, cur) {
			s.Cache.Invalidate(ctx, acc.ID)
		}
	}
}

// Count counts accounts matching criteria, ignoring order and pagination.
func (s *AccountService) Count(ctx context.Context, criteria queryx.Criteria) (int, error) {
	q, err := queryx.Compile(store.AccountSchema, criteria)
	if err != nil {
		return 0, filterError(err)
	}
	return s.Store.Accounts().Count(ctx, q)
}

// SearchPage returns one page of accounts and the total match count.
func (s *AccountService) SearchPage(ctx context.Context, criteria queryx.Criteria) ([]domain.Account, int, error) {
	list, err := s.Search(ctx, criteria)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.Count(ctx, criteria)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
