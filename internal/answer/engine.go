// Package answer serves questions against a RAG: embed the question,
// retrieve the closest chunks from approved cycles, and have the chat model
// answer grounded in that context.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/ragforge-labs/ragforge/internal/embedding"
	"github.com/ragforge-labs/ragforge/internal/llm"
	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
)

// retrievalLimit caps how many chunks are handed to the chat model.
const retrievalLimit = 8

const systemPrompt = `You answer questions using only the provided context.
Each context block is an excerpt from the knowledge base. If the context does
not contain the answer, say you don't know rather than guessing.`

// ErrUnavailable means no embedding or chat provider is configured.
var ErrUnavailable = errors.New("chat is not configured on this deployment")

type Engine struct {
	store    *store.Store
	embedder embedding.Embedder
	chat     *llm.Client
	logger   *slog.Logger
}

func NewEngine(s *store.Store, embedder embedding.Embedder, chat *llm.Client, logger *slog.Logger) *Engine {
	return &Engine{store: s, embedder: embedder, chat: chat, logger: logger}
}

type Result struct {
	Answer      string `json:"answer"`
	ContextUsed int    `json:"context_used"`
}

// Ask answers a question against the rag's approved content. Only chunks
// from approved cycles are retrievable, so a cycle under review or rejected
// never leaks into answers.
func (e *Engine) Ask(ctx context.Context, rag postgres.Rag, question string) (Result, error) {
	if e.embedder == nil || e.chat == nil {
		return Result{}, ErrUnavailable
	}

	vectors, err := e.embedder.EmbedBatch(ctx, []string{question}, embedding.InputQuery)
	if err != nil {
		return Result{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return Result{}, fmt.Errorf("embedder returned %d vectors for the question", len(vectors))
	}

	hits, err := e.store.SearchChunks(ctx, postgres.SearchChunksParams{
		RagID:          rag.ID,
		QueryEmbedding: pgvector.NewVector(vectors[0]),
		Lim:            retrievalLimit,
	})
	if err != nil {
		return Result{}, fmt.Errorf("search chunks: %w", err)
	}

	answer, err := e.chat.Complete(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(question, hits)},
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}

	e.logger.Info("question answered",
		"rag_id", rag.ID, "context_used", len(hits), "model", e.chat.Model())

	return Result{Answer: answer, ContextUsed: len(hits)}, nil
}

func buildPrompt(question string, hits []postgres.ChunkSearchRow) string {
	var b strings.Builder
	if len(hits) == 0 {
		b.WriteString("Context: (no approved content matched the question)\n\n")
	} else {
		b.WriteString("Context:\n\n")
		for i, h := range hits {
			fmt.Fprintf(&b, "[%d] (cycle %d)\n%s\n\n", i+1, h.CycleN, h.Content)
		}
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
