// ABOUTME: OpenAI embedding provider using text-embedding-3 models
// ABOUTME: Remote HTTP provider; errors propagate unwrapped with no retry at this layer
package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "text-embedding-3-large"

// OpenAIProvider embeds text through the OpenAI embeddings API. Retry policy
// belongs to the caller; a failed call surfaces immediately.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIProvider creates a provider for the given API key and model.
// An empty model selects text-embedding-3-large.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}

	dimensions := 3072
	if model == "text-embedding-3-small" {
		dimensions = 1536
	}

	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Dimensions implements Provider.
func (p *OpenAIProvider) Dimensions() int { return p.dimensions }

// Embed implements Provider.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := p.request(ctx, []string{TruncateText(text, DefaultMaxTokens)})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch implements Provider with the API's native batch support.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return p.request(ctx, truncateAll(texts))
}

func (p *OpenAIProvider) request(ctx context.Context, inputs []string) ([][]float64, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: inputs,
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vector := make([]float64, len(d.Embedding))
		for j, v := range d.Embedding {
			vector[j] = float64(v)
		}
		vectors[i] = vector
	}
	return vectors, nil
}
