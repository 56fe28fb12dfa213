package handler

import (
	"log/slog"
	"net/http"

	"github.com/ragforge-labs/ragforge/internal/rag"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

type UploadHandler struct {
	logger        *slog.Logger
	svc           *rag.Service
	maxUploadSize int64
}

func NewUploadHandler(logger *slog.Logger, svc *rag.Service, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{logger: logger, svc: svc, maxUploadSize: maxUploadSize}
}

// Upload accepts a multipart document and opens a review cycle with its
// ingestion task. Responds 202: the work happens on a worker.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, h.logger, apierr.FileRequired())
		return
	}
	defer file.Close()

	result, err := h.svc.Upload(r.Context(), ragID, userID, header.Filename, file, header.Size)
	if err != nil {
		writeAPIError(w, h.logger, serviceErrorOr(err, apierr.UploadFailed(err)))
		return
	}

	writeJSON(w, http.StatusAccepted, result)
}

// Status reports the cycle currently in review for the RAG, or null.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}

	pending, err := h.svc.UploadStatus(r.Context(), ragID, userID)
	if err != nil {
		writeAPIError(w, h.logger, serviceError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cycle_in_review": pending})
}

// Approve publishes a pending cycle's content to retrieval.
func (h *UploadHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}
	cycleID, ok := pathUUID(w, r, h.logger, "cycleID", "cycle")
	if !ok {
		return
	}

	approved, err := h.svc.ApproveCycle(r.Context(), ragID, cycleID, userID)
	if err != nil {
		writeAPIError(w, h.logger, serviceError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cycle approved",
		"cycle":   approved,
	})
}
