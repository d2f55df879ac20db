package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veldt-labs/minutex/internal/cli"
	"github.com/veldt-labs/minutex/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "minutexd",
		Short: "Minutex daemon",
		Long:  "Minutex daemon for running the ingest and search API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
