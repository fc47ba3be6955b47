package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campushub/campushub/internal/cli"
	"github.com/campushub/campushub/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "campushubd",
		Short: "CampusHub daemon and CLI",
		Long:  "CampusHub daemon for running the API server and loading reference data",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SeedCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
