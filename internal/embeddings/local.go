// ABOUTME: Local in-process embedding provider with lazy memoized initialization
// ABOUTME: Deterministic feature-hashing model; no network or API key required
package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// localDimensions is the vector size of the local feature-hashing model.
const localDimensions = 384

// LocalProvider embeds text with an in-process feature-hashing model. The
// model table is built lazily on first use; concurrent first calls share one
// initialization. Same input always yields the same unit vector, so
// self-similarity is exactly 1.0.
type LocalProvider struct {
	initOnce sync.Once
	model    *hashingModel
}

// NewLocalProvider creates an uninitialized local provider. The model loads
// on the first Embed call.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Name implements Provider.
func (p *LocalProvider) Name() string { return "local" }

// Dimensions implements Provider.
func (p *LocalProvider) Dimensions() int { return localDimensions }

// ensureInitialized memoizes model construction across concurrent callers.
func (p *LocalProvider) ensureInitialized() *hashingModel {
	p.initOnce.Do(func() {
		p.model = newHashingModel(localDimensions)
	})
	return p.model
}

// Embed implements Provider.
func (p *LocalProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := p.ensureInitialized()
	return model.embed(TruncateText(text, DefaultMaxTokens)), nil
}

// EmbedBatch implements Provider via the sequential fallback.
func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return sequentialBatch(ctx, p.Embed, texts)
}

// hashingModel maps tokens to deterministic signature vectors and averages
// them into a unit vector. Unknown vocabulary is handled implicitly: every
// token hashes to a signature.
type hashingModel struct {
	dimensions int
}

func newHashingModel(dimensions int) *hashingModel {
	return &hashingModel{dimensions: dimensions}
}

func (m *hashingModel) embed(text string) []float64 {
	vector := make([]float64, m.dimensions)

	tokens := strings.Fields(strings.ToLower(text))
	for _, token := range tokens {
		m.addSignature(vector, strings.Trim(token, ".,!?;:\"'"))
	}
	if len(tokens) == 0 {
		m.addSignature(vector, "")
	}

	return normalize(vector)
}

// addSignature accumulates the token's pseudo-random signature into vector.
// The signature is an LCG stream seeded by the token's FNV-1a hash.
func (m *hashingModel) addSignature(vector []float64, token string) {
	h := fnv.New64a()
	h.Write([]byte(token))
	seed := h.Sum64()

	for i := 0; i < m.dimensions; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		vector[i] += float64(int64(seed)) / float64(math.MaxInt64)
	}
}

// normalize converts a vector to unit length.
func normalize(vector []float64) []float64 {
	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if norm == 0 {
		return vector
	}

	norm = math.Sqrt(norm)
	normalized := make([]float64, len(vector))
	for i, v := range vector {
		normalized[i] = v / norm
	}
	return normalized
}
