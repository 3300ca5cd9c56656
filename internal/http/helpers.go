package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LukasAlexandre/Finance-Hub/internal/auth"
	"github.com/LukasAlexandre/Finance-Hub/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeStorageError maps repository errors onto HTTP statuses.
func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// authenticate extracts and verifies the session token from the cookie.
func (s *Server) authenticate(r *http.Request) (*auth.Claims, error) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return auth.VerifyToken(s.jwtSecret, cookie.Value)
}
