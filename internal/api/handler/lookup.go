package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/internal/auth"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, param, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeAPIError(w, logger, apierr.InvalidID(entity))
		return uuid.Nil, false
	}
	return id, true
}

// callerID pulls the authenticated user from the request context. The auth
// middleware guarantees it is present on protected routes.
func callerID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	id, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeAPIError(w, logger, apierr.Unauthorized())
		return uuid.Nil, false
	}
	return id, true
}
