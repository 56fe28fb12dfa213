package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"golang.org/x/sync/errgroup"

	"github.com/ragforge-labs/ragforge/internal/config"
)

const (
	cohereBatchLimit   = 96 // Cohere embed API hard limit per request
	bedrockConcurrency = 8
)

// BedrockClient implements Embedder using Cohere embed models on AWS Bedrock.
type BedrockClient struct {
	bedrock *bedrockruntime.Client
	modelID string
}

func NewBedrockClient(cfg config.BedrockConfig) (*BedrockClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &BedrockClient{
		bedrock: bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.ModelID,
	}, nil
}

type cohereEmbedRequest struct {
	Texts     []string `json:"texts"`
	InputType string   `json:"input_type"`
}

type cohereEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedBatch embeds texts in sub-batches of cohereBatchLimit with up to
// bedrockConcurrency requests in flight. Slots are pre-allocated per
// sub-batch so ordering is preserved.
func (c *BedrockClient) EmbedBatch(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batches := splitBatches(len(texts), cohereBatchLimit)
	results := make([][][]float32, len(batches))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(bedrockConcurrency)

	for idx, b := range batches {
		eg.Go(func() error {
			embeddings, err := c.invoke(egCtx, texts[b.start:b.end], inputType)
			if err != nil {
				return fmt.Errorf("batch %d: %w", idx, err)
			}
			results[idx] = embeddings
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	all := make([][]float32, 0, len(texts))
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func (c *BedrockClient) invoke(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	body, err := json.Marshal(cohereEmbedRequest{
		Texts:     texts,
		InputType: inputType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	contentType := "application/json"
	resp, err := c.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		ContentType: &contentType,
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}

	var result cohereEmbedResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return result.Embeddings, nil
}

func (c *BedrockClient) ModelID() string { return c.modelID }
