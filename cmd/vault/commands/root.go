// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Defines the vault command tree and shared output settings
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██╗   ██╗ █████╗ ██╗   ██╗██╗  ████████╗
██║   ██║██╔══██╗██║   ██║██║  ╚══██╔══╝
██║   ██║███████║██║   ██║██║     ██║
╚██╗ ██╔╝██╔══██║██║   ██║██║     ██║
 ╚████╔╝ ██║  ██║╚██████╔╝███████╗██║
  ╚═══╝  ╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Retrieval-augmented dialogue threads",
		Long: banner + `
Vault keeps long-running dialogue threads with semantic retrieval.
Every turn is embedded; continuing a thread retrieves your most
relevant past turns and generates a reflective response.

Runs as a CLI or as an MCP server for LLM agents.`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, table, json)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Subcommands
	cmd.AddCommand(NewThreadsCmd())
	cmd.AddCommand(NewNoteCmd())
	cmd.AddCommand(NewContinueCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewReindexCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
