package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hhbot/dispatcher/internal/interfaces/cli/migrate"
	"github.com/hhbot/dispatcher/internal/interfaces/cli/server"
)

const version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "hhbot",
		Short:   "hhbot - HH application dispatcher",
		Long:    `hhbot runs the campaign-driven HH job application dispatcher: HTTP control surface, OAuth token manager and the campaign/dispatch/notification schedulers.`,
		Version: version,
	}

	rootCmd.Flags().BoolP("version", "v", false, "version for hhbot")

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
