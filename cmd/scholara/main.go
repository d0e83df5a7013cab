package main

import (
	"os"

	"github.com/spf13/cobra"

	"scholara/internal/interfaces/cli/migrate"
	"scholara/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scholara",
		Short: "Scholara - tenant entitlement service",
		Long:  `Scholara resolves and serves per-tenant module entitlements for the school management platform.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
