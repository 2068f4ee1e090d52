package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/pkg/slogx"
)

// KindAccount is the cache kind for accounts.
const KindAccount = "account"

// Accounts is the typed account view over a Cache. Cache failures are
// logged and reported as misses; callers always fall back to the store.
type Accounts struct {
	Cache Cache
	TTL   time.Duration
}

// Enabled reports whether entries are stored at all.
func (a *Accounts) Enabled() bool {
	_, nop := a.Cache.(NopCache)
	return !nop
}

// Get returns the cached account for id, if any.
func (a *Accounts) Get(ctx context.Context, id int64) (domain.Account, bool) {
	data, err := a.Cache.Get(ctx, KindAccount, id)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			slogx.FromContext(ctx).Warn("cache read failed", slog.Int64("account_id", id), slog.Any("error", err))
		}
		return domain.Account{}, false
	}

	acc, err := DecodeAccount(data)
	if err != nil {
		// Drop it so the next read repopulates with the current format.
		_ = a.Cache.Delete(ctx, KindAccount, id)
		return domain.Account{}, false
	}
	return acc, true
}

// Put stores acc with the configured TTL.
func (a *Accounts) Put(ctx context.Context, acc domain.Account) {
	data, err := EncodeAccount(acc)
	if err == nil {
		err = a.Cache.Set(ctx, KindAccount, acc.ID, data, a.TTL)
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("cache write failed", slog.Int64("account_id", acc.ID), slog.Any("error", err))
	}
}

// Invalidate removes the entry for id.
func (a *Accounts) Invalidate(ctx context.Context, id int64) {
	if err := a.Cache.Delete(ctx, KindAccount, id); err != nil {
		slogx.FromContext(ctx).Warn("cache invalidate failed", slog.Int64("account_id", id), slog.Any("error", err))
	}
}
