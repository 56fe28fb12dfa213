package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

func TestChatHandler_Ask_QuestionRequired(t *testing.T) {
	ch := &ChatHandler{}
	body, _ := json.Marshal(map[string]string{"question": "   "})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rags/x/chat", bytes.NewReader(body))
	req = withCaller(req, uuid.New())
	req = withURLParam(req, "ragID", uuid.New().String())
	w := httptest.NewRecorder()

	ch.Ask(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeQuestionRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeQuestionRequired, code)
	}
}

func TestChatHandler_Ask_InvalidBody(t *testing.T) {
	ch := &ChatHandler{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rags/x/chat", bytes.NewReader([]byte("not json")))
	req = withCaller(req, uuid.New())
	req = withURLParam(req, "ragID", uuid.New().String())
	w := httptest.NewRecorder()

	ch.Ask(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeInvalidRequestBody {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidRequestBody, code)
	}
}
