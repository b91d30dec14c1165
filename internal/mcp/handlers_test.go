// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Runs handlers against an in-memory database with a stub LLM

package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harper/vault-standalone/internal/dialogue"
	"github.com/harper/vault-standalone/internal/embeddings"
	"github.com/harper/vault-standalone/internal/llm"
	"github.com/harper/vault-standalone/internal/models"
	"github.com/harper/vault-standalone/internal/retrieval"
	"github.com/harper/vault-standalone/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
)

type stubCompleter struct{}

func (stubCompleter) Name() string { return "stub" }

func (stubCompleter) Complete(ctx context.Context, params llm.CompletionParams) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{
		Content:    "a stubbed reflection",
		Usage:      llm.Usage{InputTokens: 10, OutputTokens: 5},
		StopReason: "end_turn",
	}, nil
}

func newTestHandlers(t *testing.T) (*Handlers, *sqlite.ThreadStore, *sqlite.TurnStore) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	threads := sqlite.NewThreadStore(db)
	turns := sqlite.NewTurnStore(db)
	retriever := retrieval.NewService(embeddings.NewLocalProvider(), retrieval.NewSQLiteStore(turns))
	dialogueSvc := dialogue.NewService(threads, turns, retriever, stubCompleter{})

	return &Handlers{
		threads:   threads,
		turns:     turns,
		retriever: retriever,
		dialogue:  dialogueSvc,
	}, threads, turns
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("tool result content is %T, want text", result.Content[0])
	}
	return text.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &decoded); err != nil {
		t.Fatalf("decoding tool result: %v", err)
	}
	return decoded
}

func TestCreateThreadHandler(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	result, err := handlers.CreateThread(context.Background(), toolRequest(map[string]any{
		"title":       "Evening review",
		"description": "end of day reflection",
	}))
	if err != nil {
		t.Fatalf("CreateThread() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("CreateThread() returned tool error: %s", resultText(t, result))
	}

	decoded := decodeResult(t, result)
	if decoded["title"] != "Evening review" {
		t.Errorf("title = %v", decoded["title"])
	}
	if decoded["status"] != "ACTIVE" {
		t.Errorf("status = %v", decoded["status"])
	}
}

func TestCreateThreadHandler_MissingTitle(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	result, err := handlers.CreateThread(context.Background(), toolRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("CreateThread() error = %v", err)
	}
	if !result.IsError {
		t.Error("missing title did not produce a tool error")
	}
}

func TestListThreadsHandler(t *testing.T) {
	handlers, threads, _ := newTestHandlers(t)

	thread, _ := models.NewThread("Listed thread", "")
	if err := threads.Create(thread); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := handlers.ListThreads(context.Background(), toolRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}
	if !strings.Contains(resultText(t, result), "Listed thread") {
		t.Errorf("ListThreads() output = %s", resultText(t, result))
	}
}

func TestContinueDialogueHandler(t *testing.T) {
	handlers, threads, turns := newTestHandlers(t)

	thread, _ := models.NewThread("Dialogue thread", "")
	if err := threads.Create(thread); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := handlers.ContinueDialogue(context.Background(), toolRequest(map[string]any{
		"thread_id": thread.ThreadID,
		"content":   "continuing the conversation",
	}))
	if err != nil {
		t.Fatalf("ContinueDialogue() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("ContinueDialogue() returned tool error: %s", resultText(t, result))
	}

	decoded := decodeResult(t, result)
	reflection, ok := decoded["reflection_turn"].(map[string]any)
	if !ok || reflection["content"] != "a stubbed reflection" {
		t.Errorf("reflection_turn = %v", decoded["reflection_turn"])
	}

	stored, err := turns.ListByThread(thread.ThreadID)
	if err != nil {
		t.Fatalf("ListByThread() error = %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored %d turns, want human + reflection", len(stored))
	}
}

func TestContinueDialogueHandler_MissingThread(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	result, err := handlers.ContinueDialogue(context.Background(), toolRequest(map[string]any{
		"thread_id": "thread_missing",
		"content":   "hello",
	}))
	if err != nil {
		t.Fatalf("ContinueDialogue() error = %v", err)
	}
	if !result.IsError {
		t.Error("missing thread did not produce a tool error")
	}
}

func TestSearchTurnsHandler(t *testing.T) {
	handlers, threads, turns := newTestHandlers(t)

	thread, _ := models.NewThread("Search thread", "")
	if err := threads.Create(thread); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	turn, _ := models.NewTurn(thread.ThreadID, models.RoleNote, "an indexed observation")
	if err := turns.Append(turn); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := handlers.retriever.UpsertTurnEmbedding(context.Background(), turn); err != nil {
		t.Fatalf("UpsertTurnEmbedding() error = %v", err)
	}

	result, err := handlers.SearchTurns(context.Background(), toolRequest(map[string]any{
		"query": "an indexed observation",
	}))
	if err != nil {
		t.Fatalf("SearchTurns() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("SearchTurns() returned tool error: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "an indexed observation") {
		t.Errorf("SearchTurns() output = %s", resultText(t, result))
	}
}

func TestSearchTurnsHandler_BadDate(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	result, err := handlers.SearchTurns(context.Background(), toolRequest(map[string]any{
		"query":      "anything",
		"start_date": "not-a-date",
	}))
	if err != nil {
		t.Fatalf("SearchTurns() error = %v", err)
	}
	if !result.IsError {
		t.Error("invalid start_date did not produce a tool error")
	}
}

func TestGetRecentTurnsHandler(t *testing.T) {
	handlers, threads, turns := newTestHandlers(t)

	thread, _ := models.NewThread("Recent thread", "")
	if err := threads.Create(thread); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, content := range []string{"first", "second", "third"} {
		turn, _ := models.NewTurn(thread.ThreadID, models.RoleHuman, content)
		if err := turns.Append(turn); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	result, err := handlers.GetRecentTurns(context.Background(), toolRequest(map[string]any{
		"thread_id": thread.ThreadID,
		"n":         2,
	}))
	if err != nil {
		t.Fatalf("GetRecentTurns() error = %v", err)
	}

	text := resultText(t, result)
	if strings.Contains(text, "first") {
		t.Errorf("oldest turn included beyond window:\n%s", text)
	}
	if !strings.Contains(text, "second") || !strings.Contains(text, "third") {
		t.Errorf("recent turns missing:\n%s", text)
	}
}
