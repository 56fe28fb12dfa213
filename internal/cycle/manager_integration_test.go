//go:build integration

package cycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
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
		Name:      "cycle test",
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

func TestOnePendingCyclePerRag_Integration(t *testing.T) {
	s := setupStore(t)
	r := seedRag(t, s)
	mgr := NewManager(s)
	ctx := context.Background()

	const uploads = 8
	errs := make(chan error, uploads)
	var wg sync.WaitGroup
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, err := mgr.Begin(ctx, BeginParams{
				CycleID:    uuid.New(),
				Rag:        r,
				ObjectName: fmt.Sprintf("doc-%d.txt", n),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyPending):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("want exactly one winning upload, got %d", won)
	}
	if lost != uploads-1 {
		t.Fatalf("want %d conflicts, got %d", uploads-1, lost)
	}

	if _, pending, err := mgr.CurrentPending(ctx, r.ID); err != nil || !pending {
		t.Fatalf("want a pending cycle after the race, pending=%v err=%v", pending, err)
	}
}

func TestApproveTwiceInvalidState_Integration(t *testing.T) {
	s := setupStore(t)
	r := seedRag(t, s)
	mgr := NewManager(s)
	ctx := context.Background()

	c, _, err := mgr.Begin(ctx, BeginParams{CycleID: uuid.New(), Rag: r, ObjectName: "doc.txt"})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	approved, err := mgr.Approve(ctx, c.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != postgres.CycleApproved {
		t.Errorf("status = %q, want approved", approved.Status)
	}

	if _, err := mgr.Approve(ctx, c.ID); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second approve: got %v, want ErrNotPending", err)
	}
	if _, err := mgr.Approve(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("approve missing cycle: got %v, want ErrNotFound", err)
	}

	got, err := s.GetRag(ctx, r.ID)
	if err != nil {
		t.Fatalf("get rag: %v", err)
	}
	if got.CycleCount != r.CycleCount+1 {
		t.Errorf("cycle_count = %d, want %d", got.CycleCount, r.CycleCount+1)
	}
}

func TestMarkFailedFreesPendingSlot_Integration(t *testing.T) {
	s := setupStore(t)
	r := seedRag(t, s)
	mgr := NewManager(s)
	ctx := context.Background()

	c, _, err := mgr.Begin(ctx, BeginParams{CycleID: uuid.New(), Rag: r, ObjectName: "doc.txt"})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, _, err := mgr.Begin(ctx, BeginParams{CycleID: uuid.New(), Rag: r, ObjectName: "doc2.txt"}); !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("second begin: got %v, want ErrAlreadyPending", err)
	}

	if err := mgr.MarkFailed(ctx, c.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	// Rejection is terminal; a repeat is a safe no-op.
	if err := mgr.MarkFailed(ctx, c.ID); err != nil {
		t.Fatalf("repeat mark failed: %v", err)
	}

	if _, pending, err := mgr.CurrentPending(ctx, r.ID); err != nil || pending {
		t.Fatalf("slot should be free after rejection, pending=%v err=%v", pending, err)
	}

	if _, _, err := mgr.Begin(ctx, BeginParams{CycleID: uuid.New(), Rag: r, ObjectName: "doc3.txt"}); err != nil {
		t.Fatalf("begin after rejection: %v", err)
	}
}
