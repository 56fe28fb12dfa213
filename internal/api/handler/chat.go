package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ragforge-labs/ragforge/internal/rag"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

type ChatHandler struct {
	logger *slog.Logger
	svc    *rag.Service
}

func NewChatHandler(logger *slog.Logger, svc *rag.Service) *ChatHandler {
	return &ChatHandler{logger: logger, svc: svc}
}

type chatRequest struct {
	Question string `json:"question"`
}

// Ask answers a question against the RAG's approved content.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeAPIError(w, h.logger, apierr.QuestionRequired())
		return
	}

	result, err := h.svc.Chat(r.Context(), ragID, userID, req.Question)
	if err != nil {
		writeAPIError(w, h.logger, serviceErrorOr(err, apierr.AnswerFailed(err)))
		return
	}

	writeJSON(w, http.StatusOK, result)
}
