// ABOUTME: VoyageAI embedding provider over the plain REST API
// ABOUTME: Remote HTTP provider; non-success statuses surface as errors with status detail
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// DefaultVoyageModel is used when no model is configured.
const DefaultVoyageModel = "voyage-3"

const voyageBaseURL = "https://api.voyageai.com/v1"

// VoyageProvider embeds text through the VoyageAI embeddings endpoint.
// Stateless; each call is one HTTP request with no retry at this layer.
type VoyageProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

// NewVoyageProvider creates a provider for the given API key and model.
// An empty model selects voyage-3.
func NewVoyageProvider(apiKey, model string) *VoyageProvider {
	if model == "" {
		model = DefaultVoyageModel
	}

	return &VoyageProvider{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    voyageBaseURL,
		apiKey:     apiKey,
		model:      model,
		dimensions: 1024, // voyage-3 and voyage-3-large
	}
}

// Name implements Provider.
func (p *VoyageProvider) Name() string { return "voyageai" }

// Dimensions implements Provider.
func (p *VoyageProvider) Dimensions() int { return p.dimensions }

// Embed implements Provider.
func (p *VoyageProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := p.request(ctx, []string{TruncateText(text, DefaultMaxTokens)})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch implements Provider with the API's native batch support.
func (p *VoyageProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return p.request(ctx, truncateAll(texts))
}

type voyageRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type voyageResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (p *VoyageProvider) request(ctx context.Context, inputs []string) ([][]float64, error) {
	body, err := json.Marshal(voyageRequest{Model: p.model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("voyageai: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("voyageai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voyageai: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("voyageai api error: %s", resp.Status)
	}

	var decoded voyageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("voyageai: decoding response: %w", err)
	}
	if len(decoded.Data) != len(inputs) {
		return nil, fmt.Errorf("voyageai: got %d vectors for %d inputs", len(decoded.Data), len(inputs))
	}

	// Order by the response's own index field to preserve input correspondence
	sort.Slice(decoded.Data, func(i, j int) bool {
		return decoded.Data[i].Index < decoded.Data[j].Index
	})

	vectors := make([][]float64, len(decoded.Data))
	for i, d := range decoded.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
