package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/scoutystream/scouty/internal/infrastructure/persistence/models"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// AutoMigrateModels lists every table the service owns.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.AssetModel{},
		&models.AccessGrantModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the persistence models.
// Used for development databases where versioned scripts are overkill.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) Strategy {
	return &GormAutoMigrateStrategy{
		logger: log.With("component", "migration.gorm"),
	}
}

// mysqlTableOptions matches the versioned scripts: user_id comparisons are
// byte for byte, so the default case-insensitive collation is not used.
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

func tableOptions(dialect string) string {
	if dialect == "mysql" {
		return mysqlTableOptions
	}
	return ""
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	s.logger.Infow("starting gorm auto migration", "dialect", db.Dialector.Name())

	if opts := tableOptions(db.Dialector.Name()); opts != "" {
		db = db.Set("gorm:table_options", opts)
	}

	if err := db.AutoMigrate(AutoMigrateModels()...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	s.logger.Infow("auto migration completed successfully")
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
