// ABOUTME: MCP tool definitions and registration for the vault server
// ABOUTME: Defines JSON schemas for all 5 dialogue vault tools
package mcp

import (
	"github.com/harper/vault-standalone/internal/dialogue"
	"github.com/harper/vault-standalone/internal/retrieval"
	"github.com/harper/vault-standalone/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, threads *sqlite.ThreadStore, turns *sqlite.TurnStore, retriever *retrieval.Service, dialogueSvc *dialogue.Service) *Handlers {
	handlers := &Handlers{
		threads:   threads,
		turns:     turns,
		retriever: retriever,
		dialogue:  dialogueSvc,
	}

	// 1. continue_dialogue - append a human turn and generate a reflection
	server.AddTool(mcp.Tool{
		Name:        "continue_dialogue",
		Description: "Continue a dialogue thread: stores your message, retrieves relevant prior turns, and generates a reflective response.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"thread_id": map[string]interface{}{
					"type":        "string",
					"description": "Thread to continue",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "The new message content",
				},
				"retrieval_k": map[string]interface{}{
					"type":        "number",
					"description": "How many prior turns to retrieve as context (default: 5, 0 disables retrieval)",
				},
				"model": map[string]interface{}{
					"type":        "string",
					"description": "Completion model override",
				},
				"max_tokens": map[string]interface{}{
					"type":        "number",
					"description": "Maximum response tokens (default: 4096)",
				},
			},
			Required: []string{"thread_id", "content"},
		},
	}, handlers.ContinueDialogue)

	// 2. search_turns - semantic search across stored turns
	server.AddTool(mcp.Tool{
		Name:        "search_turns",
		Description: "Search stored dialogue turns by semantic similarity. Supports optional thread, role, and date filters.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query text",
				},
				"k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 10, max: 100)",
				},
				"thread_id": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one thread",
				},
				"role": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one role (HUMAN, REFLECTION, NOTE)",
				},
				"start_date": map[string]interface{}{
					"type":        "string",
					"description": "Only turns created on or after this RFC3339 timestamp",
				},
				"end_date": map[string]interface{}{
					"type":        "string",
					"description": "Only turns created on or before this RFC3339 timestamp",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchTurns)

	// 3. get_recent_turns - recent history of one thread
	server.AddTool(mcp.Tool{
		Name:        "get_recent_turns",
		Description: "Get the most recent turns of a dialogue thread in chronological order.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"thread_id": map[string]interface{}{
					"type":        "string",
					"description": "Thread to read",
				},
				"n": map[string]interface{}{
					"type":        "number",
					"description": "How many turns to return (default: 10)",
				},
			},
			Required: []string{"thread_id"},
		},
	}, handlers.GetRecentTurns)

	// 4. list_threads - enumerate dialogue threads
	server.AddTool(mcp.Tool{
		Name:        "list_threads",
		Description: "List dialogue threads ordered by most recently updated.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"include_archived": map[string]interface{}{
					"type":        "boolean",
					"description": "Include archived threads (default: false)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum threads to return (default: 20)",
				},
			},
		},
	}, handlers.ListThreads)

	// 5. create_thread - start a new dialogue thread
	server.AddTool(mcp.Tool{
		Name:        "create_thread",
		Description: "Create a new dialogue thread with a title and optional description.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Thread title",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional thread description",
				},
			},
			Required: []string{"title"},
		},
	}, handlers.CreateThread)

	return handlers
}
