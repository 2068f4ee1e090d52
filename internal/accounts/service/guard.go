package service

import (
	"context"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
)

// Guard layers role checks over token authentication.
type Guard struct {
	Accounts *AccountService
}

// Authenticate resolves token to its account.
func (g *Guard) Authenticate(ctx context.Context, token string) (domain.Account, error) {
	return g.Accounts.AuthenticateRequest(ctx, token)
}

// Require authenticates token and checks the account holds at least min.
func (g *Guard) Require(ctx context.Context, token string, min domain.Role) (domain.Account, error) {
	acc, err := g.Authenticate(ctx, token)
	if err != nil {
		return domain.Account{}, err
	}
	if err := Check(acc, min); err != nil {
		return domain.Account{}, err
	}
	return acc, nil
}

// Check fails with token_denied, which also matches domain.ErrAccessDenied,
// when acc's role is below min.
func Check(acc domain.Account, min domain.Role) error {
	if !acc.Role.AtLeast(min) {
		return domain.NewError(domain.KindTokenDenied, domain.LocHeader, HeaderAuthorization).
			Wrap(domain.ErrAccessDenied)
	}
	return nil
}

func (g *Guard) Reader(ctx context.Context, token string) (domain.Account, error) {
	return g.Require(ctx, token, domain.RoleReader)
}

func (g *Guard) Writer(ctx context.Context, token string) (domain.Account, error) {
	return g.Require(ctx, token, domain.RoleWriter)
}

func (g *Guard) Editor(ctx context.Context, token string) (domain.Account, error) {
	return g.Require(ctx, token, domain.RoleEditor)
}

func (g *Guard) Admin(ctx context.Context, token string) (domain.Account, error) {
	return g.Require(ctx, token, domain.RoleAdmin)
}
