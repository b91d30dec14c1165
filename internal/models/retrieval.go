// ABOUTME: Search and retrieval projections for semantic turn lookup
// ABOUTME: Defines TurnFilter, TurnSearchResult, RetrievedContext, and dialogue outputs
package models

import "time"

// TurnFilter restricts a similarity search. All fields are optional and
// conjunctive when combined. Date bounds are inclusive.
type TurnFilter struct {
	ThreadID  string
	Role      Role
	StartDate *time.Time
	EndDate   *time.Time
	TagIDs    []string
}

// TurnSearchResult is one similarity hit joined with minimal thread identity
// for display.
type TurnSearchResult struct {
	Turn        Turn    `json:"turn"`
	Similarity  float64 `json:"similarity"`
	ThreadID    string  `json:"thread_id"`
	ThreadTitle string  `json:"thread_title"`
}

// RetrievedContext is an ephemeral projection built per retrieval call and
// discarded after the prompt is assembled.
type RetrievedContext struct {
	Turn       Turn    `json:"turn"`
	Similarity float64 `json:"similarity"`
	Snippet    string  `json:"snippet"`
}

// TokenUsage is the input/output token count of one LLM completion.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// DialogueResponse is the result of one dialogue continuation.
type DialogueResponse struct {
	HumanTurn        Turn               `json:"human_turn"`
	ReflectionTurn   Turn               `json:"reflection_turn"`
	RetrievedContext []RetrievedContext `json:"retrieved_context"`
	Usage            TokenUsage         `json:"usage"`
}
