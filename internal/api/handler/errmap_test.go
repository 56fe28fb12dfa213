package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ragforge-labs/ragforge/internal/access"
	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/rag"
	"github.com/ragforge-labs/ragforge/internal/task"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

func TestServiceErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apierr.Code
	}{
		{"rag not found", rag.ErrNotFound, apierr.CodeRagNotFound},
		{"active tasks", rag.ErrActiveTasks, apierr.CodeRagHasRunningTasks},
		{"cycle mismatch hides the cycle", rag.ErrCycleMismatch, apierr.CodeCycleNotFound},
		{"not a member", access.ErrNotMember, apierr.CodeNotMember},
		{"write forbidden", access.ErrWriteForbidden, apierr.CodeRoleForbidden},
		{"owner required", access.ErrOwnerRequired, apierr.CodeOwnerRequired},
		{"already pending", cycle.ErrAlreadyPending, apierr.CodeCycleAlreadyPending},
		{"cycle not pending", cycle.ErrNotPending, apierr.CodeCycleNotPending},
		{"task invalid state", task.ErrInvalidState, apierr.CodeInvalidTaskState},
		{"wrapped sentinel", fmt.Errorf("upload: %w", cycle.ErrAlreadyPending), apierr.CodeCycleAlreadyPending},
		{"unknown error", errors.New("boom"), apierr.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serviceError(tt.err).Code(); got != tt.want {
				t.Errorf("serviceError(%v) code = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestServiceErrorOr(t *testing.T) {
	plain := errors.New("connection reset")

	if got := serviceErrorOr(plain, apierr.UploadFailed(plain)).Code(); got != apierr.CodeUploadFailed {
		t.Errorf("fallback code = %s, want %s", got, apierr.CodeUploadFailed)
	}

	// A recognized sentinel wins over the fallback.
	if got := serviceErrorOr(cycle.ErrAlreadyPending, apierr.UploadFailed(plain)).Code(); got != apierr.CodeCycleAlreadyPending {
		t.Errorf("sentinel code = %s, want %s", got, apierr.CodeCycleAlreadyPending)
	}
}
