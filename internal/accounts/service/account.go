// Package service holds the account business rules: registration, the two
// step login protocol, session revocation, profile changes and the access
// guard built on top of them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/cache"
	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/pkg/cryptox"
	"github.com/aussiebroadwan/memo/pkg/jwtx"
	"github.com/aussiebroadwan/memo/pkg/otpx"
	"github.com/aussiebroadwan/memo/pkg/slogx"
)

// Limits bound the login protocol.
type Limits struct {
	// PassAttempts wrong passwords in a row suspend password logins.
	PassAttempts int

	// PassSuspendedTime is how long the suspension lasts.
	PassSuspendedTime time.Duration

	// MFAAttempts wrong codes in a row send the account back to step one.
	MFAAttempts int

	PassMinLength int
}

// DefaultLimits match the values new deployments start with.
func DefaultLimits() Limits {
	return Limits{
		PassAttempts:      5,
		PassSuspendedTime: 30 * time.Second,
		MFAAttempts:       5,
		PassMinLength:     6,
	}
}

// UserpicConfig controls profile picture uploads.
type UserpicConfig struct {
	Mimes   []string
	Width   int
	Height  int
	Quality int
}

// DefaultUserpicConfig accepts common web formats and fits them in 320x320.
func DefaultUserpicConfig() UserpicConfig {
	return UserpicConfig{
		Mimes:   []string{files.MimeJPEG, files.MimePNG, files.MimeGIF, files.MimeWEBP},
		Width:   320,
		Height:  320,
		Quality: 80,
	}
}

// AccountService exclusively owns writes to accounts and their meta rows.
// Every mutation invalidates the cached copy.
type AccountService struct {
	Store   store.Store
	Cache   *cache.Accounts
	Secrets *cryptox.SecretCodec
	Tokens  *jwtx.Codec
	OTP     *otpx.Engine
	Files   *files.Store

	Limits   Limits
	Userpics UserpicConfig

	// TokenTTL is applied when a login does not ask for an explicit
	// expiry. Zero issues tokens without "exp".
	TokenTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AccountService) logger(ctx context.Context) *slog.Logger {
	return slogx.FromContext(ctx)
}

// setSecret encrypts plain into the account's slot for field.
func (s *AccountService) setSecret(a *domain.Account, field domain.SecretField, plain string) error {
	ref := a.SecretRef(field)
	if ref == nil {
		return errors.New("service: unknown secret field " + string(field))
	}

	sealed, err := s.Secrets.Encrypt(plain)
	if err != nil {
		return err
	}
	*ref = sealed
	return nil
}

// secret decrypts the account's slot for field. Failure is fatal for the
// calling operation.
func (s *AccountService) secret(a *domain.Account, field domain.SecretField) (string, error) {
	ref := a.SecretRef(field)
	if ref == nil {
		return "", errors.New("service: unknown secret field " + string(field))
	}

	plain, err := s.Secrets.Decrypt(*ref)
	if err != nil {
		return "", domain.NewError(domain.KindDecrypt, domain.LocBody, string(field)).Wrap(err)
	}
	return plain, nil
}

// save persists a and drops its cache entry.
func (s *AccountService) save(ctx context.Context, a *domain.Account) error {
	if err := s.Store.Accounts().Update(ctx, a); err != nil {
		s.logger(ctx).Error("failed to update account", slog.Int64("account_id", a.ID), slog.Any("error", err))
		return err
	}
	s.Cache.Invalidate(ctx, a.ID)
	return nil
}

// load returns the account by id, cache first. Store reads refill the cache.
func (s *AccountService) load(ctx context.Context, id int64) (domain.Account, error) {
	if acc, ok := s.Cache.Get(ctx, id); ok {
		return acc, nil
	}

	acc, err := s.Store.Accounts().Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	s.refill(ctx, acc)
	return acc, nil
}

// refill caches acc as read from the store. A save committed after that read
// may have invalidated before this write lands, so the entry is compared
// with a second read and dropped when they differ.
func (s *AccountService) refill(ctx context.Context, acc domain.Account) {
	if !s.Cache.Enabled() {
		return
	}

	s.Cache.Put(ctx, acc)

	current, err := s.Store.Accounts().Get(ctx, acc.ID)
	if err != nil || !cache.SameAccount(acc, current) {
		s.Cache.Invalidate(ctx, acc.ID)
	}
}
