// Package api exposes the authentication core over HTTP. Every handler
// is a thin adapter: request decoding, cookie transport, and status
// mapping around the auth package.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/Arnthorny/gatehouse/auth"
	"github.com/Arnthorny/gatehouse/store"
)

// DefaultCookieName is the session cookie name used when none is
// configured.
const DefaultCookieName = "gatehouse_session"

// API holds the dependencies needed by the REST handlers.
type API struct {
	users    store.UserStore
	creds    *auth.CredentialService
	strategy auth.Strategy
	// sessions is non-nil when the active strategy is cookie/session
	// based; login and logout go through it. When nil, login falls back
	// to tokens persisted on the user record.
	sessions   *auth.SessionStrategy
	limiter    *loginRateLimiter
	audit      *auditLogger
	cookieName string
	sessionTTL time.Duration
	excluded   []string
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events. If not set, a
// default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(a *API) {
		if name != "" {
			a.cookieName = name
		}
	}
}

// WithExcludedPaths overrides the paths exempt from authentication.
func WithExcludedPaths(paths []string) Option {
	return func(a *API) {
		a.excluded = paths
	}
}

// WithSessionTTL sets the cookie lifetime advertised to clients. Zero
// leaves the cookie scoped to the browser session. The authoritative
// expiry check always happens server-side at lookup.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *API) {
		a.sessionTTL = ttl
	}
}

// New creates a new API instance over the given user store and active
// authentication strategy.
func New(users store.UserStore, strategy auth.Strategy, opts ...Option) *API {
	a := &API{
		users:      users,
		creds:      auth.NewCredentialService(users),
		strategy:   strategy,
		limiter:    newLoginRateLimiter(),
		cookieName: DefaultCookieName,
		excluded:   defaultExcludedPaths,
	}
	if ss, ok := strategy.(*auth.SessionStrategy); ok {
		a.sessions = ss
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// defaultExcludedPaths are the routes reachable without authentication:
// liveness, registration, the login/logout pair (logout proves identity
// through the cookie it consumes), the reset flow (the token is the
// proof), and the API docs.
var defaultExcludedPaths = []string{
	"/status",
	"/users",
	"/sessions",
	"/reset_password",
	"/openapi.yaml",
	"/docs*",
	"/redoc*",
}

// Router returns a chi.Router with all routes mounted and the auth
// middleware applied.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(a.AuthMiddleware)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/openapi.yaml",
		Path:    "docs",
	}, nil))
	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/openapi.yaml",
		Path:    "redoc",
	}, nil))

	r.Get("/status", a.Status)
	r.Post("/users", a.Register)
	r.Post("/sessions", a.Login)
	r.Delete("/sessions", a.Logout)
	r.Get("/profile", a.Profile)
	r.Post("/reset_password", a.IssueResetToken)
	r.Put("/reset_password", a.UpdatePassword)

	return r
}
