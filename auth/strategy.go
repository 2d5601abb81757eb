// Package auth implements the authentication strategies: self-contained
// Basic credentials and cookie-bound sessions with optional expiration
// and durable storage. Every strategy fails closed: malformed input,
// missing records, and store failures all resolve to "not authenticated"
// rather than an error visible to the routing layer.
package auth

import (
	"net/http"
	"strings"

	"github.com/Arnthorny/gatehouse/store"
)

// AuthorizationHeader is the single header strategies read credentials
// from. Exported so transport layers checking for the presence of a
// credential use the same name.
const AuthorizationHeader = "Authorization"

// Strategy resolves the identity behind an inbound request. The routing
// layer holds one active Strategy and never needs to know which concrete
// mechanism is behind it.
type Strategy interface {
	// RequiresAuth reports whether the given path needs authentication,
	// given the configured excluded paths.
	RequiresAuth(path string, excluded []string) bool
	// ResolveUser returns the authenticated user for the request, or
	// false when the request cannot be authenticated.
	ResolveUser(r *http.Request) (*store.User, bool)
}

// RequiresAuth reports whether path needs authentication. A path is
// exempt when it exactly matches an excluded entry, matches with a
// trailing slash appended, or an excluded entry ends in '*' and the path
// starts with that entry's prefix. Comparison is case-sensitive; an
// empty path or empty exclusion list always requires auth.
func RequiresAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}
	withSlash := path + "/"
	for _, e := range excluded {
		if path == e || withSlash == e {
			return false
		}
	}
	for _, e := range excluded {
		if prefix, ok := strings.CutSuffix(e, "*"); ok && strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// base supplies the contract defaults shared by every strategy: path
// exemption checks, named-header extraction, and an unauthenticated
// ResolveUser. Concrete strategies embed it and override ResolveUser.
type base struct{}

func (base) RequiresAuth(path string, excluded []string) bool {
	return RequiresAuth(path, excluded)
}

// credentialToken returns the value of the credential header, or ""
// when the request or header is missing.
func (base) credentialToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get(AuthorizationHeader)
}

func (base) ResolveUser(r *http.Request) (*store.User, bool) {
	return nil, false
}
