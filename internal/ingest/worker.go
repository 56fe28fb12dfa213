package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/pipeline"
	"github.com/ragforge-labs/ragforge/internal/store/minio"
	"github.com/ragforge-labs/ragforge/internal/task"
)

// Worker executes one ingestion job end to end: claim the task, fetch the
// document from object storage, run the pipeline, and settle the outcome.
type Worker struct {
	tasks    *task.Ledger
	cycles   *cycle.Manager
	objects  *minio.Client
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

func NewWorker(tasks *task.Ledger, cycles *cycle.Manager, objects *minio.Client, p *pipeline.Pipeline, logger *slog.Logger) *Worker {
	return &Worker{
		tasks:    tasks,
		cycles:   cycles,
		objects:  objects,
		pipeline: p,
		logger:   logger,
	}
}

// Handle processes a single job. Any failure, including a panic in the
// pipeline, lands the task in failed with the cause recorded and the cycle
// rejected; a task never reports success unless the pipeline ran to
// completion. Returning nil ACKs the message: a settled task must not be
// redelivered.
func (w *Worker) Handle(ctx context.Context, msg IngestMessage) error {
	if err := w.tasks.Start(ctx, msg.TaskID); err != nil {
		if errors.Is(err, task.ErrInvalidState) || errors.Is(err, task.ErrNotFound) {
			// Already claimed, settled, or reaped. Drop the message.
			w.logger.Warn("skipping job", "task_id", msg.TaskID, "reason", err.Error())
			return nil
		}
		return err
	}

	w.logger.Info("ingestion started",
		"task_id", msg.TaskID, "cycle_id", msg.CycleID, "object", msg.ObjectName)

	if err := w.run(ctx, msg); err != nil {
		w.settleFailure(ctx, msg, err)
		return nil
	}

	if err := w.tasks.Complete(ctx, msg.TaskID); err != nil {
		// The reaper beat us to it; the staged chunks go with the cycle.
		w.logger.Error("complete task", "task_id", msg.TaskID, "error", err.Error())
		return nil
	}

	w.logger.Info("ingestion succeeded", "task_id", msg.TaskID, "cycle_id", msg.CycleID)
	return nil
}

func (w *Worker) run(ctx context.Context, msg IngestMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	obj, err := w.objects.DownloadDocument(ctx, msg.ObjectName)
	if err != nil {
		return err
	}
	defer obj.Close()

	doc, err := io.ReadAll(obj)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	n, err := w.pipeline.Run(ctx, pipeline.RunParams{
		TaskID:   msg.TaskID,
		RagID:    msg.RagID,
		CycleID:  msg.CycleID,
		Document: doc,
	})
	if err != nil {
		return err
	}

	w.logger.Info("chunks staged", "task_id", msg.TaskID, "count", n)
	return nil
}

func (w *Worker) settleFailure(ctx context.Context, msg IngestMessage, cause error) {
	w.logger.Error("ingestion failed",
		"task_id", msg.TaskID, "cycle_id", msg.CycleID, "error", cause.Error())

	if err := w.tasks.Fail(ctx, msg.TaskID, cause.Error()); err != nil {
		w.logger.Error("fail task", "task_id", msg.TaskID, "error", err.Error())
	}
	if err := w.cycles.MarkFailed(ctx, msg.CycleID); err != nil {
		w.logger.Error("reject cycle", "cycle_id", msg.CycleID, "error", err.Error())
	}
}
