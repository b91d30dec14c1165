// ABOUTME: Tests for completion parameter validation and the default provider
// ABOUTME: Uses a stub provider to verify SetDefault override

package llm

import (
	"context"
	"testing"
)

func TestValidateParams_Defaults(t *testing.T) {
	params := CompletionParams{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}
	if err := ValidateParams(&params); err != nil {
		t.Fatalf("ValidateParams() error = %v", err)
	}
	if params.Model != DefaultModel {
		t.Errorf("Model = %q, want default", params.Model)
	}
	if params.MaxTokens != DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", params.MaxTokens, DefaultMaxTokens)
	}
}

func TestValidateParams_Bounds(t *testing.T) {
	base := []Message{{Role: RoleUser, Content: "hi"}}

	over := CompletionParams{Messages: base, MaxTokens: MaxMaxTokens + 1}
	if err := ValidateParams(&over); err == nil {
		t.Error("oversized MaxTokens accepted")
	}

	negative := CompletionParams{Messages: base, MaxTokens: -5}
	if err := ValidateParams(&negative); err == nil {
		t.Error("negative MaxTokens accepted")
	}

	atLimit := CompletionParams{Messages: base, MaxTokens: MaxMaxTokens}
	if err := ValidateParams(&atLimit); err != nil {
		t.Errorf("MaxTokens at the limit rejected: %v", err)
	}

	empty := CompletionParams{MaxTokens: 100}
	if err := ValidateParams(&empty); err == nil {
		t.Error("empty message list accepted")
	}
}

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }
func (stubProvider) Complete(ctx context.Context, params CompletionParams) (*CompletionResponse, error) {
	return &CompletionResponse{Content: "ok"}, nil
}

func TestDefault_RequiresAPIKey(t *testing.T) {
	SetDefault(nil)
	t.Cleanup(func() { SetDefault(nil) })
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := Default(); err == nil {
		t.Error("Default() succeeded without an API key")
	}
}

func TestSetDefault_Overrides(t *testing.T) {
	SetDefault(stubProvider{})
	t.Cleanup(func() { SetDefault(nil) })

	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q, want stub", p.Name())
	}
}
