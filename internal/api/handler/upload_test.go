package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

func TestUploadHandler_Upload_FileRequired(t *testing.T) {
	uh := &UploadHandler{maxUploadSize: 1 << 20}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rags/x/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=empty")
	req = withCaller(req, uuid.New())
	req = withURLParam(req, "ragID", uuid.New().String())
	w := httptest.NewRecorder()

	uh.Upload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeFileRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeFileRequired, code)
	}
}

func TestUploadHandler_Approve_InvalidCycleID(t *testing.T) {
	uh := &UploadHandler{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rags/x/cycles/y/approve", nil)
	req = withCaller(req, uuid.New())
	rctxReq := withURLParam(req, "ragID", uuid.New().String())
	w := httptest.NewRecorder()

	uh.Approve(w, rctxReq)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeInvalidID {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidID, code)
	}
}
