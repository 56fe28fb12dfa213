package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
)

type InsertChunkParams struct {
	RagID     uuid.UUID
	CycleID   uuid.UUID
	Seq       int32
	Content   string
	Embedding pgvector.Vector
}

// InsertChunks stages a batch of embedded chunks for a cycle in one
// round-trip.
func (q *Queries) InsertChunks(ctx context.Context, chunks []InsertChunkParams) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO chunks (rag_id, cycle_id, seq, content, embedding)
			 VALUES ($1, $2, $3, $4, $5)`,
			c.RagID, c.CycleID, c.Seq, c.Content, c.Embedding)
	}

	br := q.db.SendBatch(ctx, batch)
	defer br.Close()

	for range chunks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return nil
}

// DeleteChunksByCycle removes the staged chunks of a rejected cycle.
func (q *Queries) DeleteChunksByCycle(ctx context.Context, cycleID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM chunks WHERE cycle_id = $1`, cycleID)
	return err
}

// ChunkSearchRow is one retrieval hit: the chunk content and its cosine
// distance from the query embedding.
type ChunkSearchRow struct {
	Content  string
	CycleN   int32
	Distance float64
}

type SearchChunksParams struct {
	RagID          uuid.UUID
	QueryEmbedding pgvector.Vector
	Lim            int32
}

// SearchChunks retrieves the closest chunks belonging to approved cycles of
// the RAG. Pending and rejected cycles are invisible to retrieval.
func (q *Queries) SearchChunks(ctx context.Context, arg SearchChunksParams) ([]ChunkSearchRow, error) {
	rows, err := q.db.Query(ctx,
		`SELECT ch.content, cy.cycle_n, ch.embedding <=> $2 AS distance
		 FROM chunks ch
		 JOIN cycles cy ON cy.id = ch.cycle_id
		 WHERE ch.rag_id = $1 AND cy.status = 'approved'
		 ORDER BY ch.embedding <=> $2
		 LIMIT $3`,
		arg.RagID, arg.QueryEmbedding, arg.Lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ChunkSearchRow
	for rows.Next() {
		var i ChunkSearchRow
		if err := rows.Scan(&i.Content, &i.CycleN, &i.Distance); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
