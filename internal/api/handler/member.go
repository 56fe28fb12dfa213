package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ragforge-labs/ragforge/internal/rag"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

type MemberHandler struct {
	logger *slog.Logger
	svc    *rag.Service
}

func NewMemberHandler(logger *slog.Logger, svc *rag.Service) *MemberHandler {
	return &MemberHandler{logger: logger, svc: svc}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}

	members, err := h.svc.ListMembers(r.Context(), ragID, userID)
	if err != nil {
		writeAPIError(w, h.logger, serviceError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if e := validateEmail(req.Email); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}

	member, err := h.svc.AddMember(r.Context(), ragID, userID, req.Email, req.Role)
	if err != nil {
		writeAPIError(w, h.logger, serviceErrorOr(err, apierr.MemberOpFailed(err)))
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}
	targetID, ok := pathUUID(w, r, h.logger, "userID", "user")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(r.Context(), ragID, userID, targetID); err != nil {
		writeAPIError(w, h.logger, serviceErrorOr(err, apierr.MemberOpFailed(err)))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
