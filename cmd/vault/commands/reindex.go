// ABOUTME: CLI command to regenerate embeddings for stored turns
// ABOUTME: Used after switching embedding providers or models
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/vault-standalone/internal/embeddings"
	"github.com/harper/vault-standalone/internal/retrieval"
	"github.com/joho/godotenv"
)

var reindexThreadID string

// NewReindexCmd creates the reindex command
func NewReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Regenerate turn embeddings",
		Long: `Regenerate embeddings for stored turns with the configured provider.

Run this after changing EMBEDDING_PROVIDER or EMBEDDING_MODEL so
that all stored vectors come from the same model and similarity
search sees every turn.

Examples:
  vault reindex
  vault reindex --thread thread_20260901_a1b2c3d4`,
		RunE: runReindex,
	}

	cmd.Flags().StringVar(&reindexThreadID, "thread", "", "Reindex only this thread")

	return cmd
}

func runReindex(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	db, threads, turns, err := openStores()
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := embeddings.Default()
	if err != nil {
		return fmt.Errorf("initializing embedding provider: %w", err)
	}
	retriever := retrieval.NewService(provider, retrieval.NewSQLiteStore(turns))

	var threadIDs []string
	if reindexThreadID != "" {
		threadIDs = []string{reindexThreadID}
	} else {
		list, err := threads.List(true, 10000)
		if err != nil {
			return fmt.Errorf("listing threads: %w", err)
		}
		for _, thread := range list {
			threadIDs = append(threadIDs, thread.ThreadID)
		}
	}

	var reindexed, failed int
	for _, threadID := range threadIDs {
		turnList, err := turns.ListByThread(threadID)
		if err != nil {
			return fmt.Errorf("listing turns for %s: %w", threadID, err)
		}
		for _, turn := range turnList {
			if err := retriever.EnsureTurnEmbedding(cmd.Context(), turn.TurnID); err != nil {
				failed++
				if verbose {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed to embed %s: %v\n", turn.TurnID, err)
				}
				continue
			}
			reindexed++
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Reindexed %d turn(s) with provider %q", reindexed, provider.Name())
		if failed > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d failed", failed)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}
