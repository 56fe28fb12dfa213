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

func TestMemberHandler_Add_InvalidEmail(t *testing.T) {
	mh := &MemberHandler{}
	body, _ := json.Marshal(map[string]string{"email": "nope", "role": "viewer"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rags/x/members", bytes.NewReader(body))
	req = withCaller(req, uuid.New())
	req = withURLParam(req, "ragID", uuid.New().String())
	w := httptest.NewRecorder()

	mh.Add(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeEmailRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeEmailRequired, code)
	}
}

func TestMemberHandler_Remove_InvalidUserID(t *testing.T) {
	mh := &MemberHandler{}
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rags/x/members/y", nil)
	req = withCaller(req, uuid.New())
	req = withURLParam(req, "ragID", uuid.New().String())
	w := httptest.NewRecorder()

	mh.Remove(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeInvalidID {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidID, code)
	}
}
