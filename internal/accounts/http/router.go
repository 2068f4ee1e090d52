package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/cache"
	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	"github.com/aussiebroadwan/memo/internal/accounts/service"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/pkg/httpx"
	"github.com/aussiebroadwan/memo/pkg/slogx"

	_ "github.com/aussiebroadwan/memo/api/memo" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache cache.Cache
	files *files.Store

	Accounts *service.AccountService
	Guard    *service.Guard
}

func NewRouter(
	buildVersion string,
	st store.Store,
	c cache.Cache,
	fs *files.Store,
	accounts *service.AccountService,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		cache:        c,
		files:        fs,
		Accounts:     accounts,
		Guard:        &service.Guard{Accounts: accounts},
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(func(req *http.Request, v any) {
			slogx.FromContext(req.Context()).Error("handler panic", "panic", v)
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerUserpics()
	r.registerStatic()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Memo Account Service API
//	@version		0.1.0
//	@description	User accounts with two step sign in (password, then TOTP), role based access and profile management.
//	@description
//	@description				Session tokens are JWTs. Revoking them invalidates every token issued to the account.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/memo
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured authenticates the bearer token, checks the role and limits by
// account.
func (r *Router) secured(h http.HandlerFunc, min domain.Role) http.Handler {
	return httpx.Chain(h,
		Authn(r.Guard),
		RequireRole(min),
		httpx.RateLimitBySubject(httpx.ModerateLimit, rejectRateLimited),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Accounts: r.Accounts}

	// Both sign in steps are limited by IP + login to slow down guessing.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "user_login", rejectRateLimited),
		),
	)
	r.Mux.Handle("POST /v1/auth/token",
		httpx.Chain(http.HandlerFunc(h.HandleToken),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "user_login", rejectRateLimited),
		),
	)

	r.Mux.Handle("DELETE /v1/auth/token", r.secured(h.HandleRevoke, domain.RoleReader))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Accounts: r.Accounts}

	// POST /v1/users - public signup, strict limit by IP
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit, rejectRateLimited),
		),
	)

	r.Mux.Handle("GET /v1/users", r.secured(h.HandleList, domain.RoleReader))
	r.Mux.Handle("GET /v1/users/{id}", r.secured(h.HandleGet, domain.RoleReader))
	r.Mux.Handle("PUT /v1/users/{id}", r.secured(h.HandleUpdate, domain.RoleReader))
	r.Mux.Handle("DELETE /v1/users/{id}", r.secured(h.HandleDelete, domain.RoleAdmin))
	r.Mux.Handle("PUT /v1/users/{id}/role", r.secured(h.HandleRole, domain.RoleAdmin))
}

func (r *Router) registerUserpics() {
	h := &UserpicHandler{Accounts: r.Accounts}

	r.Mux.Handle("POST /v1/users/{id}/userpic", r.secured(h.HandleUpload, domain.RoleReader))
	r.Mux.Handle("DELETE /v1/users/{id}/userpic", r.secured(h.HandleDelete, domain.RoleReader))
}

func (r *Router) registerStatic() {
	for _, dir := range []string{files.DirMFA, files.DirUserpics} {
		prefix := "/" + dir + "/"
		r.Mux.Handle("GET "+prefix, StaticFiles(prefix, r.files.Path(dir, "")))
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache))
}
