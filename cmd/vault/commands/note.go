// ABOUTME: CLI command to append a note turn to a thread
// ABOUTME: Stores and embeds free-form annotations without invoking the LLM
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/vault-standalone/internal/embeddings"
	"github.com/harper/vault-standalone/internal/models"
	"github.com/harper/vault-standalone/internal/retrieval"
	"github.com/joho/godotenv"
)

// NewNoteCmd creates the note command
func NewNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note <thread-id> <content>",
		Short: "Append a note to a thread",
		Long: `Append a free-form note turn to a thread.

Notes are stored and embedded like any other turn, so they show up
in semantic search and as retrieved context, but no reflection is
generated.

Examples:
  vault note thread_20260901_a1b2c3d4 "Remember: the lease ends in March"`,
		Args: cobra.ExactArgs(2),
		RunE: runNote,
	}

	return cmd
}

func runNote(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	db, threads, turns, err := openStores()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := threads.Find(args[0]); err != nil {
		return fmt.Errorf("loading thread: %w", err)
	}

	turn, err := models.NewTurn(args[0], models.RoleNote, args[1])
	if err != nil {
		return err
	}
	if err := turns.Append(turn); err != nil {
		return fmt.Errorf("appending note: %w", err)
	}

	provider, err := embeddings.Default()
	if err != nil {
		return fmt.Errorf("initializing embedding provider: %w", err)
	}
	retriever := retrieval.NewService(provider, retrieval.NewSQLiteStore(turns))
	if err := retriever.UpsertTurnEmbedding(cmd.Context(), turn); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: note stored but not embedded: %v\n", err)
	}

	if quiet {
		fmt.Fprintln(cmd.OutOrStdout(), turn.TurnID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Added note %s to thread %s\n", turn.TurnID, args[0])
	}
	return nil
}
