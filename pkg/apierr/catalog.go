package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InvalidID(entity string) *Error {
	return New(CodeInvalidID, http.StatusBadRequest, "Invalid "+entity+" ID")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Auth ---

func Unauthorized() *Error {
	return New(CodeUnauthorized, http.StatusUnauthorized, "Authentication required")
}

func InvalidCredentials() *Error {
	return New(CodeInvalidCredentials, http.StatusUnauthorized, "Incorrect email or password")
}

func EmailTaken() *Error {
	return New(CodeEmailTaken, http.StatusConflict, "Email already registered")
}

func EmailRequired() *Error {
	return New(CodeEmailRequired, http.StatusBadRequest, "A valid email is required")
}

func PasswordTooShort() *Error {
	return New(CodePasswordTooShort, http.StatusBadRequest, "Password must be at least 8 characters")
}

// --- RAG dataset ---

func RagNotFound() *Error {
	return New(CodeRagNotFound, http.StatusNotFound, "RAG not found")
}

func RagCreateFailed(cause error) *Error {
	return Wrap(CodeRagCreateFailed, http.StatusInternalServerError, "Failed to create RAG", cause)
}

func RagDeleteFailed(cause error) *Error {
	return Wrap(CodeRagDeleteFailed, http.StatusInternalServerError, "Failed to delete RAG", cause)
}

func RagListFailed(cause error) *Error {
	return Wrap(CodeRagListFailed, http.StatusInternalServerError, "Failed to list RAGs", cause)
}

func RagHasRunningTasks() *Error {
	return New(CodeRagHasRunningTasks, http.StatusConflict, "Cannot delete: there are running tasks")
}

func NameRequired() *Error {
	return New(CodeNameRequired, http.StatusBadRequest, "Name is required")
}

func NameTooLong() *Error {
	return New(CodeNameTooLong, http.StatusBadRequest, "Name must be 255 characters or fewer")
}

// --- Authorization ---

func NotMember() *Error {
	return New(CodeNotMember, http.StatusForbidden, "You are not a member of this RAG")
}

func RoleForbidden(action string) *Error {
	return New(CodeRoleForbidden, http.StatusForbidden, "Your role does not permit "+action)
}

func OwnerRequired(action string) *Error {
	return New(CodeOwnerRequired, http.StatusForbidden, "Only the owner can "+action)
}

// --- Upload & cycle ---

func FileRequired() *Error {
	return New(CodeFileRequired, http.StatusBadRequest, "File is required (multipart field 'file')")
}

func UploadFailed(cause error) *Error {
	return Wrap(CodeUploadFailed, http.StatusInternalServerError, "Failed to upload file", cause)
}

func CycleAlreadyPending() *Error {
	return New(CodeCycleAlreadyPending, http.StatusConflict, "A cycle is already awaiting review for this dataset")
}

func CycleNotFound() *Error {
	return New(CodeCycleNotFound, http.StatusNotFound, "Cycle not found")
}

func CycleNotPending() *Error {
	return New(CodeCycleNotPending, http.StatusConflict, "Cycle is not awaiting review")
}

func EnqueueFailed(cause error) *Error {
	return Wrap(CodeEnqueueFailed, http.StatusServiceUnavailable, "Failed to start ingestion pipeline", cause)
}

// --- Task ---

func TaskNotFound() *Error {
	return New(CodeTaskNotFound, http.StatusNotFound, "Task not found")
}

func TaskListFailed(cause error) *Error {
	return Wrap(CodeTaskListFailed, http.StatusInternalServerError, "Failed to list tasks", cause)
}

func InvalidTaskState() *Error {
	return New(CodeInvalidTaskState, http.StatusConflict, "Operation not valid for the task's current state")
}

// --- Membership ---

func UserNotFound() *Error {
	return New(CodeUserNotFound, http.StatusNotFound, "No user with that email")
}

func AlreadyMember() *Error {
	return New(CodeAlreadyMember, http.StatusConflict, "User is already a member of this RAG")
}

func MemberNotFound() *Error {
	return New(CodeMemberNotFound, http.StatusNotFound, "User is not a member of this RAG")
}

func InvalidRole() *Error {
	return New(CodeInvalidRole, http.StatusBadRequest, "Role must be 'viewer' or 'editor'")
}

func OwnerImmutable() *Error {
	return New(CodeOwnerImmutable, http.StatusConflict, "The owner cannot be removed from a RAG")
}

func MemberOpFailed(cause error) *Error {
	return Wrap(CodeMemberOpFailed, http.StatusInternalServerError, "Membership operation failed", cause)
}

// --- Chat ---

func QuestionRequired() *Error {
	return New(CodeQuestionRequired, http.StatusBadRequest, "Question text is required")
}

func AnswerFailed(cause error) *Error {
	return Wrap(CodeAnswerFailed, http.StatusBadGateway, "Failed to generate an answer", cause)
}

func ChatUnavailable() *Error {
	return New(CodeChatUnavailable, http.StatusServiceUnavailable, "Chat is unavailable (LLM not configured)")
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}
