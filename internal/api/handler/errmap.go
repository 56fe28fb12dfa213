package handler

import (
	"errors"

	"github.com/ragforge-labs/ragforge/internal/access"
	"github.com/ragforge-labs/ragforge/internal/answer"
	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/rag"
	"github.com/ragforge-labs/ragforge/internal/task"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

// serviceError maps the sentinel errors of the service layer onto API error
// responses. Unknown errors become a 500.
func serviceError(err error) *apierr.Error {
	if e := knownServiceError(err); e != nil {
		return e
	}
	return apierr.InternalError(err)
}

// serviceErrorOr maps like serviceError but substitutes fallback for errors
// no sentinel claims, so each endpoint can report its own failure code.
func serviceErrorOr(err error, fallback *apierr.Error) *apierr.Error {
	if e := knownServiceError(err); e != nil {
		return e
	}
	return fallback
}

func knownServiceError(err error) *apierr.Error {
	switch {
	case errors.Is(err, rag.ErrNotFound):
		return apierr.RagNotFound()
	case errors.Is(err, rag.ErrActiveTasks):
		return apierr.RagHasRunningTasks()
	case errors.Is(err, rag.ErrEnqueueFailed):
		return apierr.EnqueueFailed(err)
	case errors.Is(err, rag.ErrCycleMismatch):
		// A cycle under a different RAG does not exist from the caller's view.
		return apierr.CycleNotFound()
	case errors.Is(err, access.ErrNotMember):
		return apierr.NotMember()
	case errors.Is(err, access.ErrOwnerRequired):
		return apierr.OwnerRequired("do this")
	case errors.Is(err, access.ErrWriteForbidden):
		return apierr.RoleForbidden("this action")
	case errors.Is(err, access.ErrAlreadyMember):
		return apierr.AlreadyMember()
	case errors.Is(err, access.ErrUserNotFound):
		return apierr.UserNotFound()
	case errors.Is(err, access.ErrMemberNotFound):
		return apierr.MemberNotFound()
	case errors.Is(err, access.ErrOwnerImmutable):
		return apierr.OwnerImmutable()
	case errors.Is(err, access.ErrInvalidRole):
		return apierr.InvalidRole()
	case errors.Is(err, cycle.ErrAlreadyPending):
		return apierr.CycleAlreadyPending()
	case errors.Is(err, cycle.ErrNotFound):
		return apierr.CycleNotFound()
	case errors.Is(err, cycle.ErrNotPending):
		return apierr.CycleNotPending()
	case errors.Is(err, task.ErrNotFound):
		return apierr.TaskNotFound()
	case errors.Is(err, task.ErrInvalidState):
		return apierr.InvalidTaskState()
	case errors.Is(err, answer.ErrUnavailable):
		return apierr.ChatUnavailable()
	default:
		return nil
	}
}
