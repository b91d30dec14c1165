// ABOUTME: Anthropic-backed completion provider
// ABOUTME: Translates CompletionParams to Messages API calls
package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider generates completions via the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a provider with the given API key
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Name returns the provider identifier
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends one completion request and returns the concatenated text
// blocks of the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, params CompletionParams) (*CompletionResponse, error) {
	if err := ValidateParams(&params); err != nil {
		return nil, err
	}

	apiParams := anthropic.MessageNewParams{
		Model:       anthropic.Model(params.Model),
		MaxTokens:   int64(params.MaxTokens),
		Messages:    toAPIMessages(params.Messages),
		Temperature: anthropic.Float(params.Temperature),
	}
	if params.System != "" {
		apiParams.System = []anthropic.TextBlockParam{
			{Text: params.System},
		}
	}

	resp, err := p.client.Messages.New(ctx, apiParams)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &CompletionResponse{
		Content: content,
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		StopReason: string(resp.StopReason),
	}, nil
}

// toAPIMessages converts provider-neutral messages to API message params
func toAPIMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}
