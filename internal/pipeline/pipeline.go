// Package pipeline stages an uploaded document into embedded chunks: split
// the text, embed each piece, and write the rows for the cycle under review.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/ragforge-labs/ragforge/internal/config"
	"github.com/ragforge-labs/ragforge/internal/embedding"
	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
	"github.com/ragforge-labs/ragforge/internal/task"
)

// insertBatchSize bounds a single pgx batch so heartbeats land between
// writes on large documents.
const insertBatchSize = 500

type Pipeline struct {
	store        *store.Store
	embedder     embedding.Embedder
	tasks        *task.Ledger
	logger       *slog.Logger
	chunkSize    int
	chunkOverlap int
}

func New(s *store.Store, embedder embedding.Embedder, tasks *task.Ledger, cfg config.WorkerConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:        s,
		embedder:     embedder,
		tasks:        tasks,
		logger:       logger,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
	}
}

type RunParams struct {
	TaskID   uuid.UUID
	RagID    uuid.UUID
	CycleID  uuid.UUID
	Document []byte
}

// Run chunks the document, embeds every chunk, and stages the rows for the
// cycle. The task heartbeat is refreshed between stages so a long embed call
// does not get the task reaped. Returns the number of chunks staged.
func (p *Pipeline) Run(ctx context.Context, params RunParams) (int, error) {
	if p.embedder == nil {
		return 0, fmt.Errorf("no embedding provider configured")
	}
	if !utf8.Valid(params.Document) {
		return 0, fmt.Errorf("document is not valid UTF-8 text")
	}

	chunks := Chunk(string(params.Document), p.chunkSize, p.chunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document contains no text")
	}
	p.logger.Info("document chunked",
		"task_id", params.TaskID, "cycle_id", params.CycleID, "chunks", len(chunks))

	if err := p.tasks.Heartbeat(ctx, params.TaskID); err != nil {
		return 0, err
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunks, embedding.InputDocument)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := p.tasks.Heartbeat(ctx, params.TaskID); err != nil {
		return 0, err
	}

	rows := make([]postgres.InsertChunkParams, len(chunks))
	for i, content := range chunks {
		rows[i] = postgres.InsertChunkParams{
			RagID:     params.RagID,
			CycleID:   params.CycleID,
			Seq:       int32(i),
			Content:   content,
			Embedding: pgvector.NewVector(vectors[i]),
		}
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		if err := p.store.InsertChunks(ctx, rows[start:end]); err != nil {
			return 0, fmt.Errorf("stage chunks: %w", err)
		}
		if err := p.tasks.Heartbeat(ctx, params.TaskID); err != nil {
			return 0, err
		}
	}

	return len(chunks), nil
}
