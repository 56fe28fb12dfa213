package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/internal/auth"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

// withCaller stamps an authenticated user onto the request context the way
// the auth middleware does.
func withCaller(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

// withURLParam injects a chi route parameter for handlers served outside a
// real router.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) apierr.Code {
	t.Helper()
	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Error.Code
}
