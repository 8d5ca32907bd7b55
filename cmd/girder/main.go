package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/girder-hq/girder/internal/interfaces/cli/migrate"
	"github.com/girder-hq/girder/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "girder",
		Short: "Girder - platform governance service",
		Long:  `Girder resolves tenant capabilities, enforces usage quotas, and keeps subscriptions in sync with the billing provider.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
