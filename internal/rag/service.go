// Package rag is the orchestration façade over datasets: it owns the
// create/list/delete surface, the upload flow that opens a review cycle, and
// the approve path that publishes one.
package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/internal/access"
	"github.com/ragforge-labs/ragforge/internal/answer"
	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/ingest"
	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
	"github.com/ragforge-labs/ragforge/internal/task"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

var (
	// ErrNotFound means the RAG does not exist.
	ErrNotFound = errors.New("rag not found")
	// ErrActiveTasks means the RAG still has pending or running tasks and
	// cannot be deleted.
	ErrActiveTasks = errors.New("rag has active tasks")
	// ErrEnqueueFailed means the ingestion job could not be published; the
	// task and cycle have already been settled as failed.
	ErrEnqueueFailed = errors.New("could not enqueue ingestion job")
	// ErrCycleMismatch means the cycle exists but belongs to another RAG.
	ErrCycleMismatch = errors.New("cycle does not belong to this rag")
)

// ObjectStore is the slice of object storage the upload flow needs.
type ObjectStore interface {
	UploadDocument(ctx context.Context, objectName string, r io.Reader, size int64) error
	RemoveDocument(ctx context.Context, objectName string) error
}

// Producer publishes ingestion jobs for the worker pool.
type Producer interface {
	Enqueue(ctx context.Context, msg ingest.IngestMessage) (string, error)
}

type Service struct {
	store    *store.Store
	guard    *access.Guard
	tasks    *task.Ledger
	cycles   *cycle.Manager
	objects  ObjectStore
	producer Producer
	answers  *answer.Engine
	logger   *slog.Logger
}

func NewService(
	s *store.Store,
	guard *access.Guard,
	tasks *task.Ledger,
	cycles *cycle.Manager,
	objects ObjectStore,
	producer Producer,
	answers *answer.Engine,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    s,
		guard:    guard,
		tasks:    tasks,
		cycles:   cycles,
		objects:  objects,
		producer: producer,
		answers:  answers,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (postgres.Rag, error) {
	id := uuid.New()
	r, err := s.store.CreateRag(ctx, postgres.CreateRagParams{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		IndexName:   "rag-" + id.String(),
	})
	if err != nil {
		return postgres.Rag{}, fmt.Errorf("create rag: %w", err)
	}

	s.logger.Info("rag created", "rag_id", r.ID, "owner_id", ownerID)
	return r, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]postgres.Rag, error) {
	rags, err := s.store.ListVisibleRags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rags: %w", err)
	}
	return rags, nil
}

// Get returns the RAG together with the caller's role on it.
func (s *Service) Get(ctx context.Context, ragID, userID uuid.UUID) (postgres.Rag, access.Role, error) {
	r, err := s.load(ctx, ragID)
	if err != nil {
		return postgres.Rag{}, "", err
	}

	role, err := s.guard.RoleOf(ctx, r, userID)
	if err != nil {
		return postgres.Rag{}, "", err
	}
	return r, role, nil
}

// Delete removes a RAG and everything under it. Owner only, and refused
// while ingestion tasks are still pending or running.
func (s *Service) Delete(ctx context.Context, ragID, userID uuid.UUID) error {
	r, role, err := s.Get(ctx, ragID, userID)
	if err != nil {
		return err
	}
	if !role.CanManage() {
		return access.ErrOwnerRequired
	}

	active, err := s.store.CountActiveTasks(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("count active tasks: %w", err)
	}
	if active > 0 {
		return ErrActiveTasks
	}

	if err := s.store.DeleteRag(ctx, r.ID); err != nil {
		return fmt.Errorf("delete rag: %w", err)
	}

	s.logger.Info("rag deleted", "rag_id", r.ID, "user_id", userID)
	return nil
}

// UploadResult identifies the cycle and task an upload opened.
type UploadResult struct {
	CycleID uuid.UUID `json:"cycle_id"`
	TaskID  uuid.UUID `json:"task_id"`
}

// Upload stores the document, opens a review cycle with its ingestion task,
// and enqueues the job. Editor or owner only. At most one cycle may be
// pending per RAG; a concurrent second upload loses atomically at cycle
// creation and its stored object is removed again.
func (s *Service) Upload(ctx context.Context, ragID, userID uuid.UUID, filename string, doc io.Reader, size int64) (UploadResult, error) {
	r, role, err := s.Get(ctx, ragID, userID)
	if err != nil {
		return UploadResult{}, err
	}
	if !role.CanWrite() {
		return UploadResult{}, access.ErrWriteForbidden
	}

	// Cheap pre-check; the unique index still decides the race.
	if _, pending, err := s.cycles.CurrentPending(ctx, r.ID); err != nil {
		return UploadResult{}, err
	} else if pending {
		return UploadResult{}, cycle.ErrAlreadyPending
	}

	cycleID := uuid.New()
	objectName := objectNameFor(r.ID, cycleID, filename)

	if err := s.objects.UploadDocument(ctx, objectName, doc, size); err != nil {
		return UploadResult{}, fmt.Errorf("store document: %w", err)
	}

	c, t, err := s.cycles.Begin(ctx, cycle.BeginParams{
		CycleID:    cycleID,
		Rag:        r,
		ObjectName: objectName,
	})
	if err != nil {
		if rmErr := s.objects.RemoveDocument(ctx, objectName); rmErr != nil {
			s.logger.Warn("orphaned upload object", "object", objectName, "error", rmErr.Error())
		}
		return UploadResult{}, err
	}

	if _, err := s.producer.Enqueue(ctx, ingest.IngestMessage{
		TaskID:     t.ID,
		CycleID:    c.ID,
		RagID:      r.ID,
		ObjectName: objectName,
	}); err != nil {
		s.logger.Error("enqueue ingestion", "task_id", t.ID, "error", err.Error())
		// Nothing will ever pick the task up; settle both records and
		// discard the stored document.
		if failErr := s.tasks.Fail(ctx, t.ID, "could not enqueue ingestion job"); failErr != nil {
			s.logger.Error("fail task after enqueue error", "task_id", t.ID, "error", failErr.Error())
		}
		if rejErr := s.cycles.MarkFailed(ctx, c.ID); rejErr != nil {
			s.logger.Error("reject cycle after enqueue error", "cycle_id", c.ID, "error", rejErr.Error())
		}
		if rmErr := s.objects.RemoveDocument(ctx, objectName); rmErr != nil {
			s.logger.Warn("orphaned upload object", "object", objectName, "error", rmErr.Error())
		}
		return UploadResult{}, ErrEnqueueFailed
	}

	s.logger.Info("upload accepted",
		"rag_id", r.ID, "cycle_id", c.ID, "task_id", t.ID, "object", objectName)

	return UploadResult{CycleID: c.ID, TaskID: t.ID}, nil
}

// PendingCycle is the upload-status view of a cycle under review.
type PendingCycle struct {
	CycleID uuid.UUID  `json:"cycle_id"`
	TaskID  *uuid.UUID `json:"task_id"`
}

// UploadStatus reports the RAG's cycle in review, or nil when the pending
// slot is free. Any member may ask.
func (s *Service) UploadStatus(ctx context.Context, ragID, userID uuid.UUID) (*PendingCycle, error) {
	r, _, err := s.Get(ctx, ragID, userID)
	if err != nil {
		return nil, err
	}

	c, pending, err := s.cycles.CurrentPending(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	if !pending {
		return nil, nil
	}
	return &PendingCycle{CycleID: c.ID, TaskID: c.TaskID}, nil
}

// ApproveCycle publishes a pending cycle's content. Editor or owner only.
func (s *Service) ApproveCycle(ctx context.Context, ragID, cycleID, userID uuid.UUID) (postgres.Cycle, error) {
	r, role, err := s.Get(ctx, ragID, userID)
	if err != nil {
		return postgres.Cycle{}, err
	}
	if !role.CanWrite() {
		return postgres.Cycle{}, access.ErrWriteForbidden
	}

	c, err := s.cycles.Get(ctx, cycleID)
	if err != nil {
		return postgres.Cycle{}, err
	}
	if c.RagID != r.ID {
		return postgres.Cycle{}, ErrCycleMismatch
	}

	approved, err := s.cycles.Approve(ctx, cycleID)
	if err != nil {
		return postgres.Cycle{}, err
	}

	s.logger.Info("cycle approved",
		"rag_id", r.ID, "cycle_id", approved.ID, "cycle_n", approved.CycleN, "user_id", userID)

	return approved, nil
}

// GetTask returns a task after checking the caller can see its RAG.
func (s *Service) GetTask(ctx context.Context, ragID, taskID, userID uuid.UUID) (postgres.Task, error) {
	r, _, err := s.Get(ctx, ragID, userID)
	if err != nil {
		return postgres.Task{}, err
	}

	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return postgres.Task{}, err
	}
	if t.RagID != r.ID {
		return postgres.Task{}, task.ErrNotFound
	}
	return t, nil
}

// LookupTask resolves a task by id alone and then authorizes against the RAG
// it belongs to. Serves the flat task polling endpoint.
func (s *Service) LookupTask(ctx context.Context, taskID, userID uuid.UUID) (postgres.Task, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return postgres.Task{}, err
	}

	r, err := s.load(ctx, t.RagID)
	if err != nil {
		return postgres.Task{}, err
	}
	if _, err := s.guard.RoleOf(ctx, r, userID); err != nil {
		return postgres.Task{}, err
	}
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context, ragID, userID uuid.UUID, limit, offset int32) ([]postgres.Task, error) {
	r, _, err := s.Get(ctx, ragID, userID)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListByRag(ctx, r.ID, limit, offset)
}

func (s *Service) ListMembers(ctx context.Context, ragID, userID uuid.UUID) ([]postgres.MemberListRow, error) {
	r, err := s.load(ctx, ragID)
	if err != nil {
		return nil, err
	}
	return s.guard.ListMembers(ctx, r, userID)
}

func (s *Service) AddMember(ctx context.Context, ragID, userID uuid.UUID, email, role string) (postgres.MemberListRow, error) {
	r, err := s.load(ctx, ragID)
	if err != nil {
		return postgres.MemberListRow{}, err
	}
	return s.guard.AddMember(ctx, r, userID, email, role)
}

func (s *Service) RemoveMember(ctx context.Context, ragID, userID, targetID uuid.UUID) error {
	r, err := s.load(ctx, ragID)
	if err != nil {
		return err
	}
	return s.guard.RemoveMember(ctx, r, userID, targetID)
}

// Chat answers a question against the RAG's approved content. Any member.
func (s *Service) Chat(ctx context.Context, ragID, userID uuid.UUID, question string) (answer.Result, error) {
	r, _, err := s.Get(ctx, ragID, userID)
	if err != nil {
		return answer.Result{}, err
	}
	return s.answers.Ask(ctx, r, question)
}

func (s *Service) load(ctx context.Context, ragID uuid.UUID) (postgres.Rag, error) {
	r, err := s.store.GetRag(ctx, ragID)
	if err != nil {
		if apierr.IsNotFound(err) {
			return postgres.Rag{}, ErrNotFound
		}
		return postgres.Rag{}, fmt.Errorf("get rag: %w", err)
	}
	return r, nil
}

// objectNameFor keys stored documents by rag and cycle so one cycle's source
// is always addressable. The filename keeps only its base name.
func objectNameFor(ragID, cycleID uuid.UUID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "document"
	}
	return fmt.Sprintf("rag_%s/cycle_%s/%s", ragID, cycleID, base)
}
