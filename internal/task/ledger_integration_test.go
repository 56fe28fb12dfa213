//go:build integration

package task

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragforge-labs/ragforge/db"
	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
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
		Name:      "ledger test",
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

func newTask(t *testing.T, s *store.Store, ragID uuid.UUID) postgres.Task {
	t.Helper()
	created, err := s.CreateTask(context.Background(), postgres.CreateTaskParams{
		ID:    uuid.New(),
		RagID: ragID,
		Type:  TypeIngestion,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created
}

func TestTerminalTaskImmutable_Integration(t *testing.T) {
	s := setupStore(t)
	r := seedRag(t, s)
	ledger := NewLedger(s)
	ctx := context.Background()

	created := newTask(t, s, r.ID)

	if err := ledger.Start(ctx, created.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ledger.Start(ctx, created.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second start: got %v, want ErrInvalidState", err)
	}

	if err := ledger.Complete(ctx, created.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Succeeded is terminal: no transition may touch the task again.
	if err := ledger.Fail(ctx, created.ID, "late failure"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("fail after complete: got %v, want ErrInvalidState", err)
	}
	if err := ledger.Complete(ctx, created.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double complete: got %v, want ErrInvalidState", err)
	}
	if err := ledger.Start(ctx, created.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("restart after complete: got %v, want ErrInvalidState", err)
	}

	got, err := ledger.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != postgres.TaskSucceeded {
		t.Errorf("status = %q, want succeeded", got.Status)
	}
	if got.Error != nil {
		t.Errorf("error = %q, want nil", *got.Error)
	}
}

func TestFailDirectlyFromPending_Integration(t *testing.T) {
	s := setupStore(t)
	r := seedRag(t, s)
	ledger := NewLedger(s)
	ctx := context.Background()

	created := newTask(t, s, r.ID)

	if err := ledger.Fail(ctx, created.ID, "could not enqueue ingestion job"); err != nil {
		t.Fatalf("fail from pending: %v", err)
	}

	got, err := ledger.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != postgres.TaskFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.Error == nil || *got.Error == "" {
		t.Error("failed task should carry an error message")
	}

	if err := ledger.Start(ctx, created.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("start after fail: got %v, want ErrInvalidState", err)
	}
}

func TestHeartbeatAfterForceFail_Integration(t *testing.T) {
	s := setupStore(t)
	r := seedRag(t, s)
	ledger := NewLedger(s)
	ctx := context.Background()

	created := newTask(t, s, r.ID)
	if err := ledger.Start(ctx, created.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The reaper force-fails the task while the worker is still alive.
	if n, err := s.FailTask(ctx, created.ID, "task exceeded its lease"); err != nil || n != 1 {
		t.Fatalf("force fail: rows=%d err=%v", n, err)
	}

	// The worker's next heartbeat must report the loss so the pipeline
	// aborts instead of staging chunks for the rejected cycle.
	if err := ledger.Heartbeat(ctx, created.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("heartbeat after force fail: got %v, want ErrInvalidState", err)
	}

	if err := ledger.Heartbeat(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("heartbeat on missing task: got %v, want ErrNotFound", err)
	}
}
