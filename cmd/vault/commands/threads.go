// ABOUTME: CLI commands to list, create, and archive dialogue threads
// ABOUTME: Thread management entry points for the vault
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/vault-standalone/internal/models"
)

var (
	threadsLimit           int
	threadsIncludeArchived bool
	threadDescription      string
)

// NewThreadsCmd creates the threads command group
func NewThreadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Manage dialogue threads",
		Long: `List, create, and archive dialogue threads.

Examples:
  vault threads list
  vault threads list --all --limit 50
  vault threads create "Morning pages" --description "daily reflections"
  vault threads archive thread_20260901_a1b2c3d4`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List threads",
		RunE:  runThreadsList,
	}
	listCmd.Flags().IntVar(&threadsLimit, "limit", 20, "Maximum threads to show")
	listCmd.Flags().BoolVar(&threadsIncludeArchived, "all", false, "Include archived threads")

	createCmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new thread",
		Args:  cobra.ExactArgs(1),
		RunE:  runThreadsCreate,
	}
	createCmd.Flags().StringVar(&threadDescription, "description", "", "Thread description")

	archiveCmd := &cobra.Command{
		Use:   "archive <thread-id>",
		Short: "Archive a thread",
		Args:  cobra.ExactArgs(1),
		RunE:  runThreadsArchive,
	}

	cmd.AddCommand(listCmd, createCmd, archiveCmd)
	return cmd
}

func runThreadsList(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(threadsLimit, "limit"); err != nil {
		return err
	}

	db, threads, _, err := openStores()
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := threads.List(threadsIncludeArchived, threadsLimit)
	if err != nil {
		return fmt.Errorf("listing threads: %w", err)
	}

	if len(list) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No threads found. Create one with: vault threads create <title>")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "THREAD ID\tTITLE\tSTATUS\tUPDATED\n")
	fmt.Fprintf(w, "---------\t-----\t------\t-------\n")
	for _, thread := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			truncate(thread.ThreadID, 34),
			truncate(thread.Title, 30),
			string(thread.Status),
			formatTime(thread.UpdatedAt))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d thread(s)\n", len(list))
	}
	return nil
}

func runThreadsCreate(cmd *cobra.Command, args []string) error {
	db, threads, _, err := openStores()
	if err != nil {
		return err
	}
	defer db.Close()

	thread, err := models.NewThread(args[0], threadDescription)
	if err != nil {
		return err
	}
	if err := threads.Create(thread); err != nil {
		return fmt.Errorf("creating thread: %w", err)
	}

	if quiet {
		fmt.Fprintln(cmd.OutOrStdout(), thread.ThreadID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Created thread %s: %s\n", thread.ThreadID, thread.Title)
	}
	return nil
}

func runThreadsArchive(cmd *cobra.Command, args []string) error {
	db, threads, _, err := openStores()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := threads.UpdateStatus(args[0], models.StatusArchived); err != nil {
		return fmt.Errorf("archiving thread: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Archived thread %s\n", args[0])
	}
	return nil
}
