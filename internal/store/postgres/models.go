package postgres

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// Task statuses.
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskSucceeded = "succeeded"
	TaskFailed    = "failed"
)

// Cycle statuses.
const (
	CyclePendingReview = "pending_review"
	CycleApproved      = "approved"
	CycleRejected      = "rejected"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  *string   `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type Rag struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IndexName   string    `json:"index_name"`
	CycleCount  int32     `json:"cycle_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type RagMember struct {
	RagID  uuid.UUID `json:"rag_id"`
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type Task struct {
	ID        uuid.UUID  `json:"id"`
	RagID     uuid.UUID  `json:"rag_id"`
	CycleID   *uuid.UUID `json:"cycle_id"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	Error     *string    `json:"error"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Cycle struct {
	ID         uuid.UUID  `json:"id"`
	RagID      uuid.UUID  `json:"rag_id"`
	CycleN     int32      `json:"cycle_n"`
	Status     string     `json:"status"`
	TaskID     *uuid.UUID `json:"task_id"`
	ObjectName string     `json:"object_name"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedAt *time.Time `json:"approved_at"`
}

type Chunk struct {
	ID        uuid.UUID       `json:"id"`
	RagID     uuid.UUID       `json:"rag_id"`
	CycleID   uuid.UUID       `json:"cycle_id"`
	Seq       int32           `json:"seq"`
	Content   string          `json:"content"`
	Embedding pgvector.Vector `json:"-"`
}
