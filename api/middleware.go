package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Arnthorny/gatehouse/auth"
	"github.com/Arnthorny/gatehouse/store"
)

type contextKey int

const userKey contextKey = iota

// AuthMiddleware enforces authentication on every path the exclusion
// list does not exempt. A request with no credential at all gets a 401;
// a credential that does not resolve to a user gets a 403. The resolved
// user is stored on the request context.
func (a *API) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.strategy.RequiresAuth(r.URL.Path, a.excluded) {
			next.ServeHTTP(w, r)
			return
		}
		if !a.hasCredential(r) {
			a.audit.logFailure(AuditAccessDenied, r, "no credential presented")
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		user, ok := a.strategy.ResolveUser(r)
		if !ok {
			a.audit.logFailure(AuditAccessDenied, r, "credential did not resolve")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// hasCredential reports whether the request carries any credential at
// all: an Authorization header or a session cookie.
func (a *API) hasCredential(r *http.Request) bool {
	if r.Header.Get(auth.AuthorizationHeader) != "" {
		return true
	}
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		return true
	}
	return false
}

func userFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(userKey).(*store.User)
	return u
}

func (a *API) writeSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})
}

func (a *API) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
