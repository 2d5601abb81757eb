package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Arnthorny/gatehouse/store"
)

// DefaultScheme is the credential header scheme used when none is
// configured.
const DefaultScheme = "Basic"

// BasicStrategy resolves identity from a single self-contained
// credential header carrying a base64-encoded "email:password" pair.
// It keeps no server-side state.
type BasicStrategy struct {
	base
	users  store.UserStore
	scheme string
}

var _ Strategy = (*BasicStrategy)(nil)

// NewBasicStrategy creates a Basic credential strategy over the given
// user store. An empty scheme falls back to DefaultScheme.
func NewBasicStrategy(users store.UserStore, scheme string) *BasicStrategy {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return &BasicStrategy{users: users, scheme: scheme}
}

// extractEncodedCredential returns the encoded payload of the header, or
// "" unless the header starts with the scheme followed by one space.
// The split is on the first space only, so the payload may itself
// contain spaces.
func (s *BasicStrategy) extractEncodedCredential(header string) string {
	scheme, payload, ok := strings.Cut(header, " ")
	if !ok || scheme != s.scheme {
		return ""
	}
	return payload
}

// decodeCredential reverses the transport encoding. Malformed base64 or
// bytes that are not valid text decode to "".
func (s *BasicStrategy) decodeCredential(encoded string) string {
	if encoded == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || !utf8.Valid(decoded) {
		return ""
	}
	return string(decoded)
}

// splitCredentials splits the decoded pair on the first ':' only, so
// passwords may contain the separator. Both results are empty when
// there is no separator.
func (s *BasicStrategy) splitCredentials(decoded string) (email, password string, ok bool) {
	email, password, ok = strings.Cut(decoded, ":")
	if !ok {
		return "", "", false
	}
	return email, password, true
}

// resolveUserFromCredentials returns the first user whose stored hash
// verifies against the password. Store failures are swallowed: any
// failure here means "not authenticated", never an error.
func (s *BasicStrategy) resolveUserFromCredentials(email, password string) (*store.User, bool) {
	if email == "" || password == "" {
		return nil, false
	}
	u, err := s.users.FindUser(map[store.Field]string{store.FieldEmail: email})
	if err != nil {
		return nil, false
	}
	if !VerifyPassword(u.HashedPassword, password) {
		return nil, false
	}
	return u, true
}

// ResolveUser composes header extraction, decoding, splitting, and
// credential verification. Any failed step short-circuits to absent.
func (s *BasicStrategy) ResolveUser(r *http.Request) (*store.User, bool) {
	header := s.credentialToken(r)
	if header == "" {
		return nil, false
	}
	decoded := s.decodeCredential(s.extractEncodedCredential(header))
	email, password, ok := s.splitCredentials(decoded)
	if !ok {
		return nil, false
	}
	return s.resolveUserFromCredentials(email, password)
}
