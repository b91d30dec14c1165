// ABOUTME: CLI command to continue a dialogue thread
// ABOUTME: Appends a turn, retrieves context, and prints the generated reflection
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/vault-standalone/internal/dialogue"
	"github.com/harper/vault-standalone/internal/embeddings"
	"github.com/harper/vault-standalone/internal/llm"
	"github.com/harper/vault-standalone/internal/retrieval"
	"github.com/joho/godotenv"
)

var (
	continueRetrievalK int
	continueModel      string
	continueMaxTokens  int
)

// NewContinueCmd creates the continue command
func NewContinueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "continue <thread-id> <content>",
		Short: "Continue a dialogue thread",
		Long: `Continue a dialogue thread with a new message.

Stores your message, retrieves your most relevant past turns as
context, and generates a reflective response that is also stored.

Requires ANTHROPIC_API_KEY.

Examples:
  vault continue thread_20260901_a1b2c3d4 "Today I kept thinking about..."
  vault continue --retrieval-k 10 thread_20260901_a1b2c3d4 "More context please"
  vault continue --retrieval-k 0 thread_20260901_a1b2c3d4 "No retrieval"`,
		Args: cobra.ExactArgs(2),
		RunE: runContinue,
	}

	cmd.Flags().IntVar(&continueRetrievalK, "retrieval-k", dialogue.DefaultRetrievalK, "Prior turns to retrieve as context (0 disables)")
	cmd.Flags().StringVar(&continueModel, "model", "", "Completion model override")
	cmd.Flags().IntVar(&continueMaxTokens, "max-tokens", 0, "Maximum response tokens")

	return cmd
}

func runContinue(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	db, threads, turns, err := openStores()
	if err != nil {
		return err
	}
	defer db.Close()

	embedder, err := embeddings.Default()
	if err != nil {
		return fmt.Errorf("initializing embedding provider: %w", err)
	}
	completer, err := llm.Default()
	if err != nil {
		return fmt.Errorf("initializing completion provider: %w", err)
	}

	retriever := retrieval.NewService(embedder, retrieval.NewSQLiteStore(turns))
	svc := dialogue.NewService(threads, turns, retriever, completer)

	resp, err := svc.Continue(cmd.Context(), dialogue.ContinueInput{
		ThreadID:   args[0],
		Content:    args[1],
		RetrievalK: &continueRetrievalK,
		Model:      continueModel,
		MaxTokens:  continueMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("continuing dialogue: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if verbose && len(resp.RetrievedContext) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Retrieved context:")
		for i, c := range resp.RetrievedContext {
			fmt.Fprintf(cmd.OutOrStdout(), "  [%d] (%.2f) %s\n", i+1, c.Similarity, truncate(c.Snippet, 80))
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.ReflectionTurn.Content)

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n(%d input + %d output tokens)\n",
			resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	return nil
}
