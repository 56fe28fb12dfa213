package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInvalidID          Code = "INVALID_ID"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Auth errors.
const (
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeEmailTaken         Code = "EMAIL_TAKEN"
	CodeEmailRequired      Code = "EMAIL_REQUIRED"
	CodePasswordTooShort   Code = "PASSWORD_TOO_SHORT"
)

// RAG dataset errors.
const (
	CodeRagNotFound        Code = "RAG_NOT_FOUND"
	CodeRagCreateFailed    Code = "RAG_CREATE_FAILED"
	CodeRagDeleteFailed    Code = "RAG_DELETE_FAILED"
	CodeRagListFailed      Code = "RAG_LIST_FAILED"
	CodeRagHasRunningTasks Code = "RAG_HAS_RUNNING_TASKS"
	CodeNameRequired       Code = "NAME_REQUIRED"
	CodeNameTooLong        Code = "NAME_TOO_LONG"
)

// Authorization errors.
const (
	CodeNotMember     Code = "NOT_MEMBER"
	CodeRoleForbidden Code = "ROLE_FORBIDDEN"
	CodeOwnerRequired Code = "OWNER_REQUIRED"
)

// Upload & cycle errors.
const (
	CodeFileRequired        Code = "FILE_REQUIRED"
	CodeUploadFailed        Code = "UPLOAD_FAILED"
	CodeCycleAlreadyPending Code = "CYCLE_ALREADY_PENDING"
	CodeCycleNotFound       Code = "CYCLE_NOT_FOUND"
	CodeCycleNotPending     Code = "CYCLE_NOT_PENDING"
	CodeEnqueueFailed       Code = "ENQUEUE_FAILED"
)

// Task errors.
const (
	CodeTaskNotFound     Code = "TASK_NOT_FOUND"
	CodeTaskListFailed   Code = "TASK_LIST_FAILED"
	CodeInvalidTaskState Code = "INVALID_TASK_STATE"
)

// Membership errors.
const (
	CodeUserNotFound   Code = "USER_NOT_FOUND"
	CodeAlreadyMember  Code = "ALREADY_MEMBER"
	CodeMemberNotFound Code = "MEMBER_NOT_FOUND"
	CodeInvalidRole    Code = "INVALID_ROLE"
	CodeOwnerImmutable Code = "OWNER_IMMUTABLE"
	CodeMemberOpFailed Code = "MEMBER_OP_FAILED"
)

// Chat errors.
const (
	CodeQuestionRequired Code = "QUESTION_REQUIRED"
	CodeAnswerFailed     Code = "ANSWER_FAILED"
	CodeChatUnavailable  Code = "CHAT_UNAVAILABLE"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)
