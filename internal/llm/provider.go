// ABOUTME: LLM completion provider abstraction for dialogue generation
// ABOUTME: Defines the message/params surface plus a process-wide default provider
package llm

import (
	"context"
	"fmt"
	"os"
	"sync"
)

const (
	// DefaultModel is the completion model used when a request leaves Model unset.
	DefaultModel = "claude-3-7-sonnet-20250219"
	// DefaultMaxTokens is the response token budget when left unset.
	DefaultMaxTokens = 4096
	// MaxMaxTokens bounds how large a response budget a request may ask for.
	MaxMaxTokens = 8192
)

// MessageRole identifies the author of one conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one prior message in the conversation sent to the model.
type Message struct {
	Role    MessageRole
	Content string
}

// CompletionParams describes one completion request.
type CompletionParams struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Usage is the token accounting for one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// CompletionResponse is the model's reply to one completion request.
type CompletionResponse struct {
	Content    string
	Usage      Usage
	StopReason string
}

// Provider generates completions from a language model.
type Provider interface {
	Name() string
	Complete(ctx context.Context, params CompletionParams) (*CompletionResponse, error)
}

// ValidateParams checks bounds and fills defaults in place.
func ValidateParams(params *CompletionParams) error {
	if params.Model == "" {
		params.Model = DefaultModel
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = DefaultMaxTokens
	}
	if params.MaxTokens < 1 || params.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("max tokens must be between 1 and %d, got %d", MaxMaxTokens, params.MaxTokens)
	}
	if len(params.Messages) == 0 {
		return fmt.Errorf("completion requires at least one message")
	}
	return nil
}

var (
	defaultMu       sync.Mutex
	defaultProvider Provider
)

// Default returns the process-wide completion provider, creating it from
// ANTHROPIC_API_KEY on first use.
func Default() (Provider, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultProvider != nil {
		return defaultProvider, nil
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
	}
	defaultProvider = NewAnthropicProvider(apiKey)
	return defaultProvider, nil
}

// SetDefault overrides the process-wide provider (for testing)
func SetDefault(p Provider) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultProvider = p
}
