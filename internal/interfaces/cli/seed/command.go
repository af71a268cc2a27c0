package seed

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutystream/scouty/internal/infrastructure/config"
	"github.com/scoutystream/scouty/internal/infrastructure/database"
	"github.com/scoutystream/scouty/internal/infrastructure/migration"
	"github.com/scoutystream/scouty/internal/infrastructure/repository"
	catalogseed "github.com/scoutystream/scouty/internal/infrastructure/seed"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

var (
	env  string
	file string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the asset catalog",
		Long: `Create the assets listed in a YAML catalog. Assets whose title already
exists are skipped, so the command can be run repeatedly.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&file, "file", "f", "configs/assets.yaml", "Path to the catalog file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, false); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if cfg.Database.Driver == "memory" {
		return fmt.Errorf("the memory store is not persistent; use `server --seed %s` instead", file)
	}

	catalog, err := catalogseed.LoadCatalog(file)
	if err != nil {
		return err
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	manager, err := migration.NewManager(cfg.Server, cfg.Database.Driver, log)
	if err != nil {
		return err
	}
	if err := manager.Migrate(database.Get()); err != nil {
		return err
	}

	assets := repository.NewAssetRepository(database.Get(), log.Named("asset_repository"))
	created, err := catalogseed.NewSeeder(assets, log.Named("seed")).Seed(context.Background(), catalog)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Infow("catalog seeded", "file", file, "entries", len(catalog.Assets), "created", created)
	fmt.Printf("Seeded %d of %d assets from %s\n", created, len(catalog.Assets), file)
	return nil
}
