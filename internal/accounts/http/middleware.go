package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/service"
	"github.com/aussiebroadwan/memo/pkg/httpx"
	"github.com/aussiebroadwan/memo/pkg/slogx"
)

type ctxKey struct{}

func withAccount(ctx context.Context, acc domain.Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, acc)
}

// AccountFromContext returns the account authenticated by Authn.
func AccountFromContext(ctx context.Context) (domain.Account, bool) {
	acc, ok := ctx.Value(ctxKey{}).(domain.Account)
	return acc, ok
}

// Authn resolves the bearer token to its account and stores it in the
// request context. The account id also becomes the rate limit subject.
func Authn(guard *service.Guard) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := httpx.BearerToken(r)

			acc, err := guard.Authenticate(r.Context(), token)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("request not authenticated", "reason", domain.KindOf(err))
				writeError(w, r, err)
				return
			}

			ctx := withAccount(r.Context(), acc)
			ctx = httpx.WithSubject(ctx, strconv.FormatInt(acc.ID, 10))
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("account_id", acc.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects accounts below min. It must run after Authn.
func RequireRole(min domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc, ok := AccountFromContext(r.Context())
			if !ok {
				writeError(w, r, domain.NewError(domain.KindTokenEmpty, domain.LocHeader, service.HeaderAuthorization))
				return
			}
			if err := service.Check(acc, min); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
