// ABOUTME: MCP tool handler implementations for the vault server
// ABOUTME: Translates tool requests into dialogue, retrieval, and store calls
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/vault-standalone/internal/dialogue"
	"github.com/harper/vault-standalone/internal/models"
	"github.com/harper/vault-standalone/internal/retrieval"
	"github.com/harper/vault-standalone/internal/storage/sqlite"
	"github.com/harper/vault-standalone/internal/util"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultRecentN     = 10
	defaultThreadLimit = 20

	searchRetries    = 2
	searchRetryDelay = time.Second
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	threads   *sqlite.ThreadStore
	turns     *sqlite.TurnStore
	retriever *retrieval.Service
	dialogue  *dialogue.Service
}

// ContinueDialogue handles the continue_dialogue tool
func (h *Handlers) ContinueDialogue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threadID, err := request.RequireString("thread_id")
	if err != nil {
		return mcp.NewToolResultError("thread_id argument is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	input := dialogue.ContinueInput{
		ThreadID:  threadID,
		Content:   content,
		Model:     request.GetString("model", ""),
		MaxTokens: request.GetInt("max_tokens", 0),
	}
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		if _, present := args["retrieval_k"]; present {
			k := request.GetInt("retrieval_k", dialogue.DefaultRetrievalK)
			input.RetrievalK = &k
		}
	}

	resp, err := h.dialogue.Continue(ctx, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dialogue continuation failed: %v", err)), nil
	}

	return marshalResult(map[string]interface{}{
		"human_turn": map[string]interface{}{
			"turn_id":     resp.HumanTurn.TurnID,
			"order_index": resp.HumanTurn.OrderIndex,
		},
		"reflection_turn": map[string]interface{}{
			"turn_id":     resp.ReflectionTurn.TurnID,
			"order_index": resp.ReflectionTurn.OrderIndex,
			"content":     resp.ReflectionTurn.Content,
		},
		"retrieved_context": formatContexts(resp.RetrievedContext),
		"usage": map[string]interface{}{
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
		},
	})
}

// SearchTurns handles the search_turns tool. Embedding providers are remote
// and occasionally flaky, so the search is retried with backoff here at the
// boundary rather than inside the service.
func (h *Handlers) SearchTurns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	filter := models.TurnFilter{
		ThreadID: request.GetString("thread_id", ""),
		Role:     models.Role(request.GetString("role", "")),
	}
	if filter.Role != "" && !models.ValidRole(filter.Role) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown role: %s", filter.Role)), nil
	}
	if raw := request.GetString("start_date", ""); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid start_date: %v", err)), nil
		}
		filter.StartDate = &ts
	}
	if raw := request.GetString("end_date", ""); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid end_date: %v", err)), nil
		}
		filter.EndDate = &ts
	}

	input := retrieval.SearchInput{
		Query:  query,
		K:      request.GetInt("k", 0),
		Filter: filter,
	}

	var results []models.TurnSearchResult
	var lastErr error
	for attempt := 0; attempt <= searchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(searchRetryDelay, attempt)):
			case <-ctx.Done():
				return mcp.NewToolResultError(fmt.Sprintf("search cancelled: %v", ctx.Err())), nil
			}
		}
		results, lastErr = h.retriever.SearchSimilarTurns(ctx, input)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", lastErr)), nil
	}

	formatted := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		formatted = append(formatted, map[string]interface{}{
			"turn_id":      r.Turn.TurnID,
			"thread_id":    r.ThreadID,
			"thread_title": r.ThreadTitle,
			"role":         string(r.Turn.Role),
			"content":      r.Turn.Content,
			"similarity":   r.Similarity,
			"created_at":   r.Turn.CreatedAt.Format(time.RFC3339),
		})
	}
	return marshalResult(map[string]interface{}{"results": formatted})
}

// GetRecentTurns handles the get_recent_turns tool
func (h *Handlers) GetRecentTurns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threadID, err := request.RequireString("thread_id")
	if err != nil {
		return mcp.NewToolResultError("thread_id argument is required and must be a string"), nil
	}
	n := request.GetInt("n", defaultRecentN)
	if n < 1 {
		return mcp.NewToolResultError(fmt.Sprintf("n must be positive, got %d", n)), nil
	}

	if _, err := h.threads.Find(threadID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("thread lookup failed: %v", err)), nil
	}

	turns, err := h.turns.Recent(threadID, n)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading turns failed: %v", err)), nil
	}

	formatted := make([]map[string]interface{}, 0, len(turns))
	for _, turn := range turns {
		formatted = append(formatted, map[string]interface{}{
			"turn_id":     turn.TurnID,
			"role":        string(turn.Role),
			"content":     turn.Content,
			"order_index": turn.OrderIndex,
			"created_at":  turn.CreatedAt.Format(time.RFC3339),
		})
	}
	return marshalResult(map[string]interface{}{
		"thread_id": threadID,
		"turns":     formatted,
	})
}

// ListThreads handles the list_threads tool
func (h *Handlers) ListThreads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeArchived := request.GetBool("include_archived", false)
	limit := request.GetInt("limit", defaultThreadLimit)
	if limit < 1 {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be positive, got %d", limit)), nil
	}

	threads, err := h.threads.List(includeArchived, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing threads failed: %v", err)), nil
	}

	formatted := make([]map[string]interface{}, 0, len(threads))
	for _, thread := range threads {
		formatted = append(formatted, map[string]interface{}{
			"thread_id":   thread.ThreadID,
			"title":       thread.Title,
			"description": thread.Description,
			"status":      string(thread.Status),
			"updated_at":  thread.UpdatedAt.Format(time.RFC3339),
		})
	}
	return marshalResult(map[string]interface{}{"threads": formatted})
}

// CreateThread handles the create_thread tool
func (h *Handlers) CreateThread(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required and must be a string"), nil
	}
	description := request.GetString("description", "")

	thread, err := models.NewThread(title, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid thread: %v", err)), nil
	}
	if err := h.threads.Create(thread); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating thread failed: %v", err)), nil
	}

	return marshalResult(map[string]interface{}{
		"thread_id": thread.ThreadID,
		"title":     thread.Title,
		"status":    string(thread.Status),
	})
}

// formatContexts projects retrieved context for tool responses
func formatContexts(contexts []models.RetrievedContext) []map[string]interface{} {
	formatted := make([]map[string]interface{}, 0, len(contexts))
	for _, c := range contexts {
		formatted = append(formatted, map[string]interface{}{
			"turn_id":    c.Turn.TurnID,
			"similarity": c.Similarity,
			"snippet":    c.Snippet,
		})
	}
	return formatted
}

// marshalResult encodes a response map as a JSON tool result
func marshalResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
