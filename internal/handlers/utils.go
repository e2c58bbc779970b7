package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/memoria-app/apiserver/internal/services"
	"github.com/memoria-app/apiserver/internal/store"
	"github.com/memoria-app/apiserver/types"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// identityFromContext returns the acting identity injected by the auth
// middleware, or Anonymous when none is present.
func identityFromContext(ctx context.Context) types.Identity {
	if identity, ok := ctx.Value(contextIdentityKey).(types.Identity); ok {
		return identity
	}
	return types.Anonymous
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps service and store failures to their specific HTTP
// statuses instead of collapsing everything into a 500.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrSelfFollow):
		writeError(w, http.StatusForbidden, "cannot follow yourself")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a simple confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}
