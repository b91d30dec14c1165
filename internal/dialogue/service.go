// ABOUTME: Dialogue continuation orchestrator
// ABOUTME: Persists the human turn, retrieves context, and generates a reflection
package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/vault-standalone/internal/llm"
	"github.com/harper/vault-standalone/internal/models"
)

const (
	// DefaultRetrievalK is how many context turns are retrieved when unset.
	DefaultRetrievalK = 5
	// MaxRetrievalK bounds how much context one continuation may request.
	MaxRetrievalK = 50
	// historyWindow is how many recent turns are replayed to the model.
	historyWindow = 10

	temperature = 1.0
)

// ThreadStore is the thread lookup surface the orchestrator needs.
type ThreadStore interface {
	Find(threadID string) (*models.Thread, error)
}

// TurnStore is the turn persistence surface the orchestrator needs.
type TurnStore interface {
	Append(turn *models.Turn) error
	Recent(threadID string, n int) ([]models.Turn, error)
}

// Retriever embeds turns and fetches relevant prior context.
type Retriever interface {
	UpsertTurnEmbedding(ctx context.Context, turn *models.Turn) error
	RetrievedContextForDialogue(ctx context.Context, threadID, query string, k int) ([]models.RetrievedContext, error)
}

// Service orchestrates one dialogue continuation end to end.
type Service struct {
	threads   ThreadStore
	turns     TurnStore
	retriever Retriever
	provider  llm.Provider
}

// NewService creates a dialogue service
func NewService(threads ThreadStore, turns TurnStore, retriever Retriever, provider llm.Provider) *Service {
	return &Service{
		threads:   threads,
		turns:     turns,
		retriever: retriever,
		provider:  provider,
	}
}

// ContinueInput is one dialogue continuation request. RetrievalK left nil
// falls back to DefaultRetrievalK; an explicit 0 disables retrieved context.
type ContinueInput struct {
	ThreadID   string
	Content    string
	RetrievalK *int
	Model      string
	MaxTokens  int
}

// normalizeRetrievalK maps the optional request field onto the effective
// context count
func normalizeRetrievalK(k *int) (int, error) {
	if k == nil {
		return DefaultRetrievalK, nil
	}
	if *k < 0 || *k > MaxRetrievalK {
		return 0, fmt.Errorf("retrieval k must be between 0 and %d, got %d", MaxRetrievalK, *k)
	}
	return *k, nil
}

// Continue appends the human turn to the thread, retrieves relevant prior
// turns, and generates a reflection turn from the model. A failure after the
// human turn is appended aborts the sequence and surfaces the error; the
// human turn stays persisted, so a retried request never loses input.
func (s *Service) Continue(ctx context.Context, input ContinueInput) (*models.DialogueResponse, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("dialogue content cannot be empty")
	}
	k, err := normalizeRetrievalK(input.RetrievalK)
	if err != nil {
		return nil, err
	}
	if input.MaxTokens < 0 || input.MaxTokens > llm.MaxMaxTokens {
		return nil, fmt.Errorf("max tokens must be between 1 and %d, got %d", llm.MaxMaxTokens, input.MaxTokens)
	}

	thread, err := s.threads.Find(input.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("loading thread: %w", err)
	}

	// Snapshot history before the new turn lands so it is not its own context
	history, err := s.turns.Recent(input.ThreadID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("loading recent turns: %w", err)
	}

	humanTurn, err := models.NewTurn(input.ThreadID, models.RoleHuman, input.Content)
	if err != nil {
		return nil, err
	}
	if err := s.turns.Append(humanTurn); err != nil {
		return nil, fmt.Errorf("appending human turn: %w", err)
	}

	if err := s.retriever.UpsertTurnEmbedding(ctx, humanTurn); err != nil {
		return nil, fmt.Errorf("embedding human turn: %w", err)
	}

	contexts, err := s.retriever.RetrievedContextForDialogue(ctx, input.ThreadID, input.Content, k)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionParams{
		Model:       input.Model,
		System:      buildSystemPrompt(thread, contexts),
		Messages:    buildMessages(history, input.Content),
		MaxTokens:   input.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating reflection: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("model returned an empty reflection")
	}

	reflectionTurn, err := models.NewTurn(input.ThreadID, models.RoleReflection, resp.Content)
	if err != nil {
		return nil, err
	}
	reflectionTurn.TokenCountEstimate = resp.Usage.InputTokens + resp.Usage.OutputTokens
	if err := s.turns.Append(reflectionTurn); err != nil {
		return nil, fmt.Errorf("appending reflection turn: %w", err)
	}

	if err := s.retriever.UpsertTurnEmbedding(ctx, reflectionTurn); err != nil {
		return nil, fmt.Errorf("embedding reflection turn: %w", err)
	}

	return &models.DialogueResponse{
		HumanTurn:        *humanTurn,
		ReflectionTurn:   *reflectionTurn,
		RetrievedContext: contexts,
		Usage: models.TokenUsage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}

// buildSystemPrompt combines the persona, thread identity, and retrieved context
func buildSystemPrompt(thread *models.Thread, contexts []models.RetrievedContext) string {
	var b strings.Builder
	b.WriteString("You are a reflective dialogue partner continuing a long-running conversation. ")
	b.WriteString("Respond thoughtfully in the voice of the ongoing exchange, building on earlier turns rather than repeating them.\n\n")
	fmt.Fprintf(&b, "Thread: %q\n", thread.Title)
	if thread.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", thread.Description)
	}

	if len(contexts) > 0 {
		b.WriteString("\nRelevant context from previous turns:\n")
		for i, c := range contexts {
			fmt.Fprintf(&b, "[%d] (similarity: %.2f)\n%s\n", i+1, c.Similarity, c.Snippet)
		}
	}
	return b.String()
}

// buildMessages replays recent history then the new content. Historical turns
// carry a role marker prefix so NOTE and REFLECTION turns stay
// distinguishable; the new content goes in unprefixed.
func buildMessages(history []models.Turn, content string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	for _, turn := range history {
		role := llm.RoleUser
		if turn.Role == models.RoleReflection {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: fmt.Sprintf("**%s:**\n%s", turn.Role, turn.Content),
		})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: content})
	return messages
}
