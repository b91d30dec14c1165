// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use the vault via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

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

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the vault as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to search and continue dialogue threads
via stdio.

Configure in Claude Desktop's config file to enable vault tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  vault mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "vault": {
  #       "command": "vault",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.AnthropicKey == "" {
		log.Println("Warning: ANTHROPIC_API_KEY not set - dialogue continuation will not work")
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	threads := sqlite.NewThreadStore(db)
	turns := sqlite.NewTurnStore(db)

	embedder, err := embeddings.Default()
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	if verbose {
		log.Printf("Embedding provider: %s (%d dimensions)", embedder.Name(), embedder.Dimensions())
	}

	retriever := retrieval.NewService(embedder, retrieval.NewSQLiteStore(turns))

	// Dialogue needs a completion provider; tools degrade gracefully without one
	var dialogueSvc *dialogue.Service
	if completer, err := llm.Default(); err == nil {
		dialogueSvc = dialogue.NewService(threads, turns, retriever, completer)
	} else {
		log.Printf("Warning: completion provider unavailable: %v", err)
		dialogueSvc = dialogue.NewService(threads, turns, retriever, unavailableProvider{})
	}

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Dialogue Vault",
		"0.1.0",
	)

	mcp.RegisterTools(server, threads, turns, retriever, dialogueSvc)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Vault MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		if err := db.Close(); err != nil {
			log.Printf("Warning: Error closing database: %v", err)
		}

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}

// unavailableProvider fails every completion with a configuration hint
type unavailableProvider struct{}

func (unavailableProvider) Name() string { return "unavailable" }

func (unavailableProvider) Complete(ctx context.Context, params llm.CompletionParams) (*llm.CompletionResponse, error) {
	return nil, fmt.Errorf("no completion provider configured: set ANTHROPIC_API_KEY")
}
