package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Arnthorny/gatehouse/store"
)

// Status handles GET /status. It is always reachable without
// authentication.
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "OK"})
}

// Register handles POST /users.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[RegisterRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.creds.Register(req.Email, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditRegister, r, user.ID)
	writeJSON(w, http.StatusOK, MessageResponse{Email: user.Email, Message: "user created"})
}

// Login handles POST /sessions. On success it binds a new session to
// the caller via the session cookie. The distinction between a missing
// field and a bad credential is only made here, at the outermost layer.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password missing")
		return
	}

	if blocked, retryAfter := a.limiter.check(req.Email); blocked {
		a.audit.logFailure(AuditLoginRateLimited, r, "rate limited")
		w.Header().Set("Retry-After", retryAfter.Truncate(time.Second).String())
		writeError(w, http.StatusTooManyRequests, "too many failed attempts")
		return
	}

	if !a.creds.Authenticate(req.Email, req.Password) {
		a.limiter.recordFailure(req.Email)
		a.audit.logFailure(AuditLoginFailure, r, "invalid credentials")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	user, err := a.users.FindUser(map[store.Field]string{store.FieldEmail: req.Email})
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sessionID, ok := a.createSession(user)
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	a.limiter.recordSuccess(req.Email)

	var expiresAt time.Time
	if a.sessionTTL > 0 {
		expiresAt = time.Now().Add(a.sessionTTL)
	}
	a.writeSessionCookie(w, r, sessionID, expiresAt)

	a.audit.logEvent(AuditLoginSuccess, r, user.ID)
	writeJSON(w, http.StatusOK, MessageResponse{Email: user.Email, Message: "logged in"})
}

// createSession binds a fresh session id to the user through whichever
// mechanism is active: the session registry when a session strategy is
// configured, otherwise a token persisted on the user record.
func (a *API) createSession(user *store.User) (string, bool) {
	if a.sessions != nil {
		return a.sessions.Sessions().Create(user.ID)
	}
	return a.creds.IssueSessionToken(user.Email)
}

// Logout handles DELETE /sessions. 403 when the request carries no live
// session to destroy.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	var userID string
	destroyed := false
	if a.sessions != nil {
		if user, ok := a.sessions.ResolveUser(r); ok {
			userID = user.ID
		}
		destroyed = a.sessions.DestroySession(r)
	} else if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		if user, ok := a.creds.UserBySessionToken(c.Value); ok {
			userID = user.ID
			a.creds.InvalidateSession(user.ID)
			destroyed = true
		}
	}
	if !destroyed {
		a.audit.logFailure(AuditAccessDenied, r, "logout without live session")
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	a.clearSessionCookie(w, r)
	a.audit.logEvent(AuditLogout, r, userID)
	writeJSON(w, http.StatusOK, struct{}{})
}

// Profile handles GET /profile for the authenticated user.
func (a *API) Profile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Email: user.Email})
}

// IssueResetToken handles POST /reset_password. Revealing whether an
// account exists here is a deliberate product decision for the recovery
// flow, not a leak of the authentication surface.
func (a *API) IssueResetToken(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[ResetTokenRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusForbidden, "email is required")
		return
	}

	tok, err := a.creds.IssueResetToken(req.Email)
	if err != nil {
		a.audit.logFailure(AuditResetIssued, r, "unknown email")
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditResetIssued, r, "", slog.String("email_domain", emailDomain(req.Email)))
	writeJSON(w, http.StatusOK, ResetTokenResponse{Email: req.Email, ResetToken: tok})
}

// UpdatePassword handles PUT /reset_password, consuming the reset token.
func (a *API) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[UpdatePasswordRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}

	if err := a.creds.UpdatePassword(req.ResetToken, req.NewPassword); err != nil {
		a.audit.logFailure(AuditPasswordUpdated, r, "invalid token")
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditPasswordUpdated, r, "")
	writeJSON(w, http.StatusOK, MessageResponse{Email: req.Email, Message: "Password updated"})
}

// emailDomain returns the part after '@' for logging without recording
// the full address.
func emailDomain(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return ""
}
