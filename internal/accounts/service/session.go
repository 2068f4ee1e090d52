package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/pkg/cryptox"
	"github.com/aussiebroadwan/memo/pkg/jwtx"
)

// HeaderAuthorization is the location session token errors refer to.
const HeaderAuthorization = "Authorization"

func (s *AccountService) byLogin(ctx context.Context, login string) (domain.Account, error) {
	acc, err := s.Store.Accounts().GetByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.NewError(domain.KindValueNotFound, domain.LocBody, "user_login")
	}
	return acc, err
}

// Login is step one: check the password. Success leaves the account waiting
// for its second factor.
func (s *AccountService) Login(ctx context.Context, login, password string) error {
	acc, err := s.byLogin(ctx, login)
	if err != nil {
		return err
	}

	if !acc.Role.CanLogin() {
		return domain.NewError(domain.KindAccessDenied, domain.LocBody, "user_login")
	}

	now := s.now()
	if acc.Suspended(now) {
		return domain.NewError(domain.KindAttemptsSuspended, domain.LocBody, "user_login")
	}

	if s.Secrets.VerifyPassword(password, acc.PassHash) {
		acc.SuspendedDate = time.Time{}
		acc.PassAttempts = 0
		acc.PassAccepted = true
		return s.save(ctx, &acc)
	}

	acc.SuspendedDate = time.Time{}
	acc.PassAttempts++
	acc.PassAccepted = false
	if acc.PassAttempts >= s.Limits.PassAttempts {
		acc.SuspendedDate = now.Add(s.Limits.PassSuspendedTime)
		acc.PassAttempts = 0
		s.logger(ctx).Warn("password logins suspended", slog.Int64("account_id", acc.ID))
	}

	if err := s.save(ctx, &acc); err != nil {
		return err
	}

	s.logger(ctx).Warn("password rejected", slog.Int64("account_id", acc.ID))
	return domain.NewError(domain.KindValueInvalid, domain.LocBody, "user_pass")
}

type VerifyInput struct {
	Login string
	Code  string

	// ExpiresAt overrides the configured token lifetime. Nil with a zero
	// TokenTTL issues a token without expiry.
	ExpiresAt *time.Time
}

// VerifySecondFactor is step two: check the TOTP code and issue a session
// token. Either outcome consumes the accepted password once the attempt
// limit is reached; success always does.
func (s *AccountService) VerifySecondFactor(ctx context.Context, in VerifyInput) (string, error) {
	acc, err := s.byLogin(ctx, in.Login)
	if err != nil {
		return "", err
	}

	if !acc.PassAccepted {
		return "", domain.NewError(domain.KindAccessDenied, domain.LocBody, "user_login")
	}

	mfaKey, err := s.secret(&acc, domain.SecretMFAKey)
	if err != nil {
		return "", err
	}

	now := s.now()
	if !s.OTP.Validate(in.Code, mfaKey, now) {
		acc.MFAAttempts++
		if acc.MFAAttempts >= s.Limits.MFAAttempts {
			acc.MFAAttempts = 0
			acc.PassAccepted = false
		}
		if err := s.save(ctx, &acc); err != nil {
			return "", err
		}

		s.logger(ctx).Warn("second factor rejected", slog.Int64("account_id", acc.ID))
		return "", domain.NewError(domain.KindValueInvalid, domain.LocBody, "user_totp")
	}

	if err := s.OTP.DeleteEnrollmentImage(mfaKey); err != nil {
		s.logger(ctx).Warn("failed to remove enrollment image", slog.Any("error", err))
	}

	acc.MFAAttempts = 0
	acc.PassAccepted = false
	if err := s.save(ctx, &acc); err != nil {
		return "", err
	}

	jti, err := s.secret(&acc, domain.SecretJTI)
	if err != nil {
		return "", err
	}

	exp := in.ExpiresAt
	if exp == nil && s.TokenTTL > 0 {
		t := now.Add(s.TokenTTL)
		exp = &t
	}

	token, err := s.Tokens.Issue(acc.ID, acc.Role.String(), acc.Login, jti, now, exp)
	if err != nil {
		return "", err
	}

	s.logger(ctx).Info("session token issued", slog.Int64("account_id", acc.ID))
	return token, nil
}

// Revoke rotates the account's jti, invalidating every token issued so far.
func (s *AccountService) Revoke(ctx context.Context, acc *domain.Account) error {
	jti, err := cryptox.GenerateRotationID()
	if err != nil {
		return err
	}

	updated := *acc
	if err := s.setSecret(&updated, domain.SecretJTI, jti); err != nil {
		return err
	}
	if err := s.save(ctx, &updated); err != nil {
		return err
	}
	*acc = updated

	s.logger(ctx).Info("session tokens revoked", slog.Int64("account_id", acc.ID))
	return nil
}

// AuthenticateRequest resolves a bearer token to its account. The token's
// jti must equal the account's current one. Expiry is judged by the service
// clock, the same one that stamped the token.
func (s *AccountService) AuthenticateRequest(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		return domain.Account{}, domain.NewError(domain.KindTokenEmpty, domain.LocHeader, HeaderAuthorization)
	}

	claims, err := s.Tokens.ParseAt(token, s.now())
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.Account{}, domain.NewError(domain.KindTokenExpired, domain.LocHeader, HeaderAuthorization)
		}
		return domain.Account{}, domain.NewError(domain.KindTokenInvalid, domain.LocHeader, HeaderAuthorization)
	}

	rejected := domain.NewError(domain.KindTokenRejected, domain.LocHeader, HeaderAuthorization)

	acc, err := s.load(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, rejected
	}
	if err != nil {
		return domain.Account{}, err
	}

	jti, err := s.secret(&acc, domain.SecretJTI)
	if err != nil {
		return domain.Account{}, err
	}
	if subtle.ConstantTimeCompare([]byte(jti), []byte(claims.JTI())) != 1 {
		return domain.Account{}, rejected
	}
	return acc, nil
}
