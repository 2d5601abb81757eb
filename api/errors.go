package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Arnthorny/gatehouse/auth"
)

// maxAuthBodySize bounds the JSON bodies on auth endpoints.
const maxAuthBodySize = 16 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeJSON decodes a bounded JSON body, writing a 400 on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (T, bool) {
	var req T
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrDuplicateUser):
		writeError(w, http.StatusBadRequest, "email already registered")
	case errors.Is(err, auth.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "password too long")
	case errors.Is(err, auth.ErrNoSuchUser):
		writeError(w, http.StatusForbidden, "no account for that email")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusForbidden, "invalid reset token")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
