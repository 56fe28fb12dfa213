// Package embedding turns text into vectors for storage and retrieval.
package embedding

import (
	"context"
	"fmt"

	"github.com/ragforge-labs/ragforge/internal/config"
)

// Input types distinguish document chunks from user queries; asymmetric
// embedding models produce different vectors for each side.
const (
	InputDocument = "search_document"
	InputQuery    = "search_query"
)

// Embedder is implemented by embedding providers.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string, inputType string) ([][]float32, error)
	ModelID() string
}

// NewEmbedder selects a provider from config: OpenRouter when an API key is
// set, otherwise Bedrock when a region is set, otherwise nil. A nil embedder
// means ingestion and chat are unavailable; the API still serves everything
// else.
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	if cfg.OpenRouter.APIKey != "" {
		client, err := NewOpenRouterClient(cfg.OpenRouter)
		if err != nil {
			return nil, fmt.Errorf("openrouter client: %w", err)
		}
		return client, nil
	}

	if cfg.Bedrock.Region != "" {
		client, err := NewBedrockClient(cfg.Bedrock)
		if err != nil {
			return nil, fmt.Errorf("bedrock client: %w", err)
		}
		return client, nil
	}

	return nil, nil
}

// splitBatches cuts [0,n) into half-open ranges of at most size.
type batchRange struct {
	start int
	end   int
}

func splitBatches(n, size int) []batchRange {
	var out []batchRange
	for i := 0; i < n; i += size {
		out = append(out, batchRange{i, min(i+size, n)})
	}
	return out
}
