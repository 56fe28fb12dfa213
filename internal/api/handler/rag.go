package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ragforge-labs/ragforge/internal/rag"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

type RagHandler struct {
	logger *slog.Logger
	svc    *rag.Service
}

func NewRagHandler(logger *slog.Logger, svc *rag.Service) *RagHandler {
	return &RagHandler{logger: logger, svc: svc}
}

type createRagRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *RagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}

	var req createRagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if e := validateName(req.Name); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}

	created, err := h.svc.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		writeAPIError(w, h.logger, apierr.RagCreateFailed(err))
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *RagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}

	rags, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.RagListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rags": rags})
}

func (h *RagHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}

	found, role, err := h.svc.Get(r.Context(), ragID, userID)
	if err != nil {
		writeAPIError(w, h.logger, serviceError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rag": found, "role": role})
}

func (h *RagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), ragID, userID); err != nil {
		writeAPIError(w, h.logger, serviceErrorOr(err, apierr.RagDeleteFailed(err)))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
