package service

import (
	"context"
	"errors"
	"log/slog"
	"path"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/pkg/cryptox"
	"github.com/aussiebroadwan/memo/pkg/otpx"
	"github.com/aussiebroadwan/memo/pkg/queryx"
)

type RegisterInput struct {
	Login     string
	Password  string
	FirstName string
	LastName  string

	// Meta optionally sets editable meta keys on creation.
	Meta map[string]string
}

// RegisterResult carries what the client needs to enrol its authenticator.
type RegisterResult struct {
	Account domain.Account

	// MFASecret is the base32 TOTP secret, shown once.
	MFASecret string

	// MFAImage is the URL path of the enrollment QR code.
	MFAImage string
}

// MFAImageURL is the public path enrollment images are served under.
func MFAImageURL(secret string) string {
	return path.Join("/", files.DirMFA, otpx.ImageName(secret))
}

func (s *AccountService) validateRegister(in RegisterInput) error {
	if err := checkLength("user_login", in.Login, LoginMinLength, LoginMaxLength); err != nil {
		return err
	}
	if err := checkLength("user_pass", in.Password, s.Limits.PassMinLength, 0); err != nil {
		return err
	}
	if err := checkNames(in.FirstName, in.LastName); err != nil {
		return err
	}
	return checkMeta(in.Meta)
}

// Register creates an account. The very first account becomes admin, every
// later one starts with no role and cannot log in until promoted.
//
// Nothing is left behind on failure: the transaction is rolled back and the
// enrollment image removed.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	if err := s.validateRegister(in); err != nil {
		return RegisterResult{}, err
	}

	taken := domain.NewError(domain.KindValueExists, domain.LocBody, "user_login")

	_, err := s.Store.Accounts().GetByLogin(ctx, in.Login)
	if err == nil {
		return RegisterResult{}, taken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return RegisterResult{}, err
	}

	jti, err := cryptox.GenerateRotationID()
	if err != nil {
		return RegisterResult{}, err
	}

	mfaKey, err := s.OTP.GenerateSecret()
	if err != nil {
		return RegisterResult{}, err
	}

	if _, err := s.OTP.RenderEnrollmentImage(in.Login, mfaKey); err != nil {
		return RegisterResult{}, err
	}

	acc := domain.Account{
		Role:      domain.RoleNone,
		Login:     in.Login,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		PassHash:  s.Secrets.HashPassword(in.Password),
		Meta:      domain.Meta{},
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Accounts().Count(ctx, queryx.Query{})
		if err != nil {
			return err
		}
		if n == 0 {
			acc.Role = domain.RoleAdmin
		}

		if err := s.setSecret(&acc, domain.SecretJTI, jti); err != nil {
			return err
		}
		if err := s.setSecret(&acc, domain.SecretMFAKey, mfaKey); err != nil {
			return err
		}

		if err := tx.Accounts().Insert(ctx, &acc); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return taken
			}
			return err
		}

		for key, value := range in.Meta {
			if value == "" {
				continue
			}
			if err := tx.AccountMeta().Set(ctx, acc.ID, key, value); err != nil {
				return err
			}
			acc.Meta[key] = value
		}
		return nil
	})
	if err != nil {
		if delErr := s.OTP.DeleteEnrollmentImage(mfaKey); delErr != nil {
			s.logger(ctx).Error("failed to remove enrollment image", slog.Any("error", delErr))
		}
		return RegisterResult{}, err
	}

	s.logger(ctx).Info("account registered",
		slog.Int64("account_id", acc.ID),
		slog.String("user_role", acc.Role.String()),
	)

	return RegisterResult{
		Account:   acc,
		MFASecret: mfaKey,
		MFAImage:  MFAImageURL(mfaKey),
	}, nil
}
