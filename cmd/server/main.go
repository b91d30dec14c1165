// ABOUTME: Main entry point for the vault MCP server with stdio transport
// ABOUTME: Initializes storage, providers, and MCP server with all tools
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/harper/vault-standalone/internal/config"
	"github.com/harper/vault-standalone/internal/dialogue"
	"github.com/harper/vault-standalone/internal/embeddings"
	"github.com/harper/vault-standalone/internal/llm"
	"github.com/harper/vault-standalone/internal/mcp"
	"github.com/harper/vault-standalone/internal/retrieval"
	"github.com/harper/vault-standalone/internal/storage/sqlite"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AnthropicKey == "" {
		log.Println("Warning: ANTHROPIC_API_KEY not set - dialogue continuation will not work")
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	threads := sqlite.NewThreadStore(db)
	turns := sqlite.NewTurnStore(db)

	embedder, err := embeddings.Default()
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}
	retriever := retrieval.NewService(embedder, retrieval.NewSQLiteStore(turns))

	var completer llm.Provider
	if completer, err = llm.Default(); err != nil {
		log.Printf("Warning: completion provider unavailable: %v", err)
		completer = unavailableProvider{}
	}
	dialogueSvc := dialogue.NewService(threads, turns, retriever, completer)

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Dialogue Vault",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, threads, turns, retriever, dialogueSvc)

	// Start server with stdio transport
	log.Println("Vault MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// unavailableProvider fails every completion with a configuration hint
type unavailableProvider struct{}

func (unavailableProvider) Name() string { return "unavailable" }

func (unavailableProvider) Complete(ctx context.Context, params llm.CompletionParams) (*llm.CompletionResponse, error) {
	return nil, fmt.Errorf("no completion provider configured: set ANTHROPIC_API_KEY")
}
