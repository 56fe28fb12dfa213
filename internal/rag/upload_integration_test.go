//go:build integration

package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragforge-labs/ragforge/db"
	"github.com/ragforge-labs/ragforge/internal/access"
	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/ingest"
	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
	"github.com/ragforge-labs/ragforge/internal/task"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := db.Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("postgres ping failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return store.New(pool)
}

func seedRag(t *testing.T, s *store.Store) postgres.Rag {
	t.Helper()
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, postgres.CreateUserParams{
		Email:        fmt.Sprintf("owner-%s@test.local", uuid.NewString()),
		PasswordHash: "irrelevant",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	ragID := uuid.New()
	r, err := s.CreateRag(ctx, postgres.CreateRagParams{
		ID:        ragID,
		OwnerID:   owner.ID,
		Name:      "upload test",
		IndexName: "rag-" + ragID.String(),
	})
	if err != nil {
		t.Fatalf("create rag: %v", err)
	}

	t.Cleanup(func() {
		s.Pool().Exec(ctx, "DELETE FROM rags WHERE id = $1", r.ID)
		s.Pool().Exec(ctx, "DELETE FROM users WHERE id = $1", owner.ID)
	})
	return r
}

// fakeObjects records object store calls instead of talking to MinIO.
type fakeObjects struct {
	uploads  []string
	removals []string
}

func (f *fakeObjects) UploadDocument(_ context.Context, objectName string, _ io.Reader, _ int64) error {
	f.uploads = append(f.uploads, objectName)
	return nil
}

func (f *fakeObjects) RemoveDocument(_ context.Context, objectName string) error {
	f.removals = append(f.removals, objectName)
	return nil
}

// stubProducer fails every enqueue when err is set.
type stubProducer struct {
	err error
}

func (p *stubProducer) Enqueue(context.Context, ingest.IngestMessage) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "1-0", nil
}

func newTestService(s *store.Store, objects ObjectStore, producer Producer) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(s, access.NewGuard(s), task.NewLedger(s), cycle.NewManager(s), objects, producer, nil, logger)
}

func TestUploadEnqueueFailureCleansUp_Integration(t *testing.T) {
	s := setupStore(t)
	r := seedRag(t, s)
	ctx := context.Background()

	objects := &fakeObjects{}
	svc := newTestService(s, objects, &stubProducer{err: errors.New("stream down")})

	_, err := svc.Upload(ctx, r.ID, r.OwnerID, "doc.txt", strings.NewReader("hello"), 5)
	if !errors.Is(err, ErrEnqueueFailed) {
		t.Fatalf("upload: got %v, want ErrEnqueueFailed", err)
	}

	// The stored document must not be left behind.
	if len(objects.uploads) != 1 || len(objects.removals) != 1 {
		t.Fatalf("uploads=%v removals=%v, want one of each", objects.uploads, objects.removals)
	}
	if objects.removals[0] != objects.uploads[0] {
		t.Errorf("removed %q, want %q", objects.removals[0], objects.uploads[0])
	}

	// Task failed, cycle rejected, pending slot free.
	tasks, err := s.ListTasksByRag(ctx, postgres.ListTasksByRagParams{RagID: r.ID, Limit: 10})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != postgres.TaskFailed {
		t.Fatalf("tasks = %+v, want one failed task", tasks)
	}
	if pending, err := svc.UploadStatus(ctx, r.ID, r.OwnerID); err != nil || pending != nil {
		t.Fatalf("upload status = %+v err=%v, want free slot", pending, err)
	}
}

func TestUploadConflictWhilePending_Integration(t *testing.T) {
	s := setupStore(t)
	r := seedRag(t, s)
	ctx := context.Background()

	objects := &fakeObjects{}
	svc := newTestService(s, objects, &stubProducer{})

	res, err := svc.Upload(ctx, r.ID, r.OwnerID, "doc.txt", strings.NewReader("hello"), 5)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	pending, err := svc.UploadStatus(ctx, r.ID, r.OwnerID)
	if err != nil {
		t.Fatalf("upload status: %v", err)
	}
	if pending == nil || pending.CycleID != res.CycleID {
		t.Fatalf("upload status = %+v, want cycle %s in review", pending, res.CycleID)
	}
	if pending.TaskID == nil || *pending.TaskID != res.TaskID {
		t.Fatalf("pending task = %v, want %s", pending.TaskID, res.TaskID)
	}

	_, err = svc.Upload(ctx, r.ID, r.OwnerID, "doc2.txt", strings.NewReader("more"), 4)
	if !errors.Is(err, cycle.ErrAlreadyPending) {
		t.Fatalf("second upload: got %v, want ErrAlreadyPending", err)
	}
}
