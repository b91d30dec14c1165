// ABOUTME: Embedding provider contract and shared helpers
// ABOUTME: Defines the Provider interface, silent truncation, and the sequential batch fallback
package embeddings

import "context"

// DefaultMaxTokens is the per-call truncation bound applied before embedding.
const DefaultMaxTokens = 8192

// charsPerToken is the rough token-to-character approximation used for
// truncation: 4 characters per token.
const charsPerToken = 4

// Provider converts text into fixed-dimension embedding vectors.
//
// Every implementation produces vectors of exactly Dimensions() length. Two
// vectors are only comparable when produced by providers with matching Name
// and Dimensions. Implementations must be safe for concurrent use.
type Provider interface {
	// Name identifies the provider (e.g. "openai", "voyageai", "local").
	Name() string

	// Dimensions returns the fixed length of every vector this provider
	// produces.
	Dimensions() int

	// Embed returns the embedding vector for a single text. Oversized input
	// is truncated silently; Embed never fails solely on input length.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch returns one vector per input text, index-for-index.
	// Providers without native batch support embed sequentially in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// TruncateText silently truncates text to maxTokens worth of characters
// using the 4-chars-per-token approximation.
func TruncateText(text string, maxTokens int) string {
	maxChars := maxTokens * charsPerToken
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars]
}

// truncateAll truncates every text in texts with the default token bound.
func truncateAll(texts []string) []string {
	truncated := make([]string, len(texts))
	for i, t := range texts {
		truncated[i] = TruncateText(t, DefaultMaxTokens)
	}
	return truncated
}

// sequentialBatch is the batch fallback for providers without native batch
// support: embed each text in order, preserving index correspondence. The
// loop is intentionally sequential to keep memory and rate limits bounded.
func sequentialBatch(ctx context.Context, embed func(context.Context, string) ([]float64, error), texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vector, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}
