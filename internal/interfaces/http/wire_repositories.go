package http

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/infrastructure/repository"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// repositories holds the two stores the service owns.
type repositories struct {
	grants access.Repository
	assets asset.Repository
}

// newRepositories picks the GORM-backed stores, or the in-memory ones for the
// memory driver.
func newRepositories(db *gorm.DB, driver string, log logger.Interface) (*repositories, error) {
	if driver == "memory" {
		log.Warnw("using in-memory store; grants and assets are lost on restart")
		return &repositories{
			grants: repository.NewMemoryAccessGrantRepository(),
			assets: repository.NewMemoryAssetRepository(),
		}, nil
	}
	if db == nil {
		return nil, fmt.Errorf("database driver %q requires a database connection", driver)
	}

	return &repositories{
		grants: repository.NewAccessGrantRepository(db, log.Named("grant_repository")),
		assets: repository.NewAssetRepository(db, log.Named("asset_repository")),
	}, nil
}
