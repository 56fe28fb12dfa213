package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ragforge-labs/ragforge/internal/rag"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

const (
	defaultTaskPageSize = 20
	maxTaskPageSize     = 100
)

type TaskHandler struct {
	logger *slog.Logger
	svc    *rag.Service
}

func NewTaskHandler(logger *slog.Logger, svc *rag.Service) *TaskHandler {
	return &TaskHandler{logger: logger, svc: svc}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}

	limit := queryInt(r, "limit", defaultTaskPageSize)
	if limit < 1 || limit > maxTaskPageSize {
		limit = defaultTaskPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	tasks, err := h.svc.ListTasks(r.Context(), ragID, userID, int32(limit), int32(offset))
	if err != nil {
		writeAPIError(w, h.logger, serviceErrorOr(err, apierr.TaskListFailed(err)))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// Get returns one task's status and error, if any. Clients poll this while
// an upload is processing.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	ragID, ok := pathUUID(w, r, h.logger, "ragID", "rag")
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, h.logger, "taskID", "task")
	if !ok {
		return
	}

	t, err := h.svc.GetTask(r.Context(), ragID, taskID, userID)
	if err != nil {
		writeAPIError(w, h.logger, serviceError(err))
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Lookup serves the flat /tasks/{taskID} endpoint: the task id alone is
// enough to poll with, membership on its RAG is still required.
func (h *TaskHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, h.logger, "taskID", "task")
	if !ok {
		return
	}

	t, err := h.svc.LookupTask(r.Context(), taskID, userID)
	if err != nil {
		writeAPIError(w, h.logger, serviceError(err))
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
