// ABOUTME: CLI command to search stored turns by semantic similarity
// ABOUTME: Supports thread, role, and result-count filters
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/vault-standalone/internal/embeddings"
	"github.com/harper/vault-standalone/internal/models"
	"github.com/harper/vault-standalone/internal/retrieval"
	"github.com/joho/godotenv"
)

var (
	searchK        int
	searchThreadID string
	searchRole     string
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search turns semantically",
		Long: `Search stored dialogue turns by semantic similarity.

Embeds the query with the configured provider and ranks stored
turns by cosine similarity.

Examples:
  vault search "what did I decide about the move"
  vault search --thread thread_20260901_a1b2c3d4 "apartment"
  vault search --role REFLECTION --k 20 "recurring themes"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchK, "k", 10, "Maximum results to return")
	cmd.Flags().StringVar(&searchThreadID, "thread", "", "Restrict to one thread")
	cmd.Flags().StringVar(&searchRole, "role", "", "Restrict to one role (HUMAN, REFLECTION, NOTE)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validatePositiveInt(searchK, "k"); err != nil {
		return err
	}
	role := models.Role(searchRole)
	if role != "" && !models.ValidRole(role) {
		return fmt.Errorf("unknown role: %s", searchRole)
	}

	db, _, turns, err := openStores()
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := embeddings.Default()
	if err != nil {
		return fmt.Errorf("initializing embedding provider: %w", err)
	}
	retriever := retrieval.NewService(provider, retrieval.NewSQLiteStore(turns))

	results, err := retriever.SearchSimilarTurns(cmd.Context(), retrieval.SearchInput{
		Query: args[0],
		K:     searchK,
		Filter: models.TurnFilter{
			ThreadID: searchThreadID,
			Role:     role,
		},
	})
	if err != nil {
		return fmt.Errorf("searching turns: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No turns found for query: %s\n", args[0])
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tROLE\tTHREAD\tCONTENT\n")
	fmt.Fprintf(w, "-----\t----\t------\t-------\n")
	for _, result := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
			result.Similarity,
			string(result.Turn.Role),
			truncate(result.ThreadTitle, 20),
			truncate(result.Turn.Content, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
	}
	return nil
}
