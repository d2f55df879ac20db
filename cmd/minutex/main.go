package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veldt-labs/minutex/internal/cli"
	"github.com/veldt-labs/minutex/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "minutex",
		Short: "Minutex CLI - Meeting document search",
		Long: `Minutex CLI ingests meeting documents and searches them semantically.

Environment variables:
  MINUTEX_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.QueryCmd())
	rootCmd.AddCommand(client.MeetingsCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.DocumentCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
