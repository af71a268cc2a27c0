package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/scoutystream/scouty/internal/interfaces/cli/migrate"
	"github.com/scoutystream/scouty/internal/interfaces/cli/seed"
	"github.com/scoutystream/scouty/internal/interfaces/cli/server"
	"github.com/scoutystream/scouty/internal/interfaces/cli/token"
	"github.com/scoutystream/scouty/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "scouty",
		Short:   "ScoutyStream - pay-per-view video streaming backend",
		Long:    `ScoutyStream serves the video catalog, settles x402 payments and records access on the Chiliz ledger.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		seed.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
