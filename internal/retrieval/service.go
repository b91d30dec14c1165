// ABOUTME: Retrieval service combining embeddings with similarity search
// ABOUTME: Re-ranks candidates by similarity and recency for prompt context
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/harper/vault-standalone/internal/embeddings"
	"github.com/harper/vault-standalone/internal/models"
)

const (
	// DefaultSearchK is the result count when a search request leaves K unset.
	DefaultSearchK = 10
	// MaxSearchK bounds how many results a single search may request.
	MaxSearchK = 100

	similarityWeight = 0.7
	recencyWeight    = 0.3
	recencyDecayDays = 30.0
	overFetchFactor  = 2
	snippetMaxLen    = 200
)

// Store is the storage surface the retrieval service needs.
type Store interface {
	FindTurn(turnID string) (*models.Turn, error)
	UpdateTurnEmbedding(turnID string, vector []float64, providerName string) error
	SearchSimilar(queryVector []float64, filter models.TurnFilter, k int) ([]models.TurnSearchResult, error)
}

// Service embeds queries and turns and searches stored vectors.
type Service struct {
	provider embeddings.Provider
	store    Store
}

// NewService creates a retrieval service backed by the given provider and store
func NewService(provider embeddings.Provider, store Store) *Service {
	return &Service{provider: provider, store: store}
}

// SearchInput is one semantic search request.
type SearchInput struct {
	Query  string
	K      int
	Filter models.TurnFilter
}

// SearchSimilarTurns embeds the query text and returns the K most similar
// stored turns. A zero K means unset and falls back to DefaultSearchK;
// explicit values must stay within [1, MaxSearchK].
func (s *Service) SearchSimilarTurns(ctx context.Context, input SearchInput) ([]models.TurnSearchResult, error) {
	if input.Query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	k := input.K
	if k == 0 {
		k = DefaultSearchK
	}
	if k < 1 || k > MaxSearchK {
		return nil, fmt.Errorf("search k must be between 1 and %d, got %d", MaxSearchK, k)
	}

	queryVector, err := s.provider.Embed(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding search query: %w", err)
	}

	results, err := s.store.SearchSimilar(queryVector, input.Filter, k)
	if err != nil {
		return nil, fmt.Errorf("searching turns: %w", err)
	}
	return results, nil
}

// UpsertTurnEmbedding generates and stores an embedding for the turn's
// content, replacing any existing vector.
func (s *Service) UpsertTurnEmbedding(ctx context.Context, turn *models.Turn) error {
	vector, err := s.provider.Embed(ctx, turn.Content)
	if err != nil {
		return fmt.Errorf("embedding turn %s: %w", turn.TurnID, err)
	}
	if err := s.store.UpdateTurnEmbedding(turn.TurnID, vector, s.provider.Name()); err != nil {
		return fmt.Errorf("storing embedding for turn %s: %w", turn.TurnID, err)
	}
	turn.Embedding = vector
	turn.EmbeddingModel = s.provider.Name()
	return nil
}

// EnsureTurnEmbedding regenerates the turn's embedding with the current
// provider. Existing vectors are overwritten rather than trusted, since the
// configured provider may have changed since they were written.
func (s *Service) EnsureTurnEmbedding(ctx context.Context, turnID string) error {
	turn, err := s.store.FindTurn(turnID)
	if err != nil {
		return fmt.Errorf("loading turn %s: %w", turnID, err)
	}
	return s.UpsertTurnEmbedding(ctx, turn)
}

// RetrievedContextForDialogue finds the k turns most relevant to the query
// within a thread, re-ranked by a blend of similarity and recency. It
// over-fetches 2k candidates by raw similarity, then keeps the top k by
// combined score. k=0 returns no context and skips the search entirely.
func (s *Service) RetrievedContextForDialogue(ctx context.Context, threadID, query string, k int) ([]models.RetrievedContext, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVector, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding dialogue query: %w", err)
	}

	filter := models.TurnFilter{ThreadID: threadID}
	candidates, err := s.store.SearchSimilar(queryVector, filter, k*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("searching dialogue context: %w", err)
	}

	now := time.Now().UTC()
	type scored struct {
		result models.TurnSearchResult
		score  float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{
			result: c,
			score:  combinedScore(c.Similarity, c.Turn.CreatedAt, now),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].result.Turn.TurnID < ranked[j].result.Turn.TurnID
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	contexts := make([]models.RetrievedContext, 0, len(ranked))
	for _, r := range ranked {
		contexts = append(contexts, models.RetrievedContext{
			Turn:       r.result.Turn,
			Similarity: r.result.Similarity,
			Snippet:    makeSnippet(r.result.Turn.Content),
		})
	}
	return contexts, nil
}

// combinedScore blends raw similarity with an exponential recency decay whose
// half-life is on the order of recencyDecayDays.
func combinedScore(similarity float64, createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	recency := math.Exp(-ageDays / recencyDecayDays)
	return similarityWeight*similarity + recencyWeight*recency
}

// makeSnippet truncates content to snippetMaxLen characters for prompt use.
// Truncation is rune-based so multibyte content is never split mid-character.
func makeSnippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetMaxLen {
		return content
	}
	return string(runes[:snippetMaxLen]) + "..."
}
