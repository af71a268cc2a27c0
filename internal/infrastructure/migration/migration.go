// Package migration creates and upgrades the service schema.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	sharedConfig "github.com/scoutystream/scouty/internal/shared/config"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// Manager runs one migration strategy against a database.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks versioned scripts for production servers and model-driven
// auto migration elsewhere.
func NewManager(server sharedConfig.ServerConfig, driver string, log logger.Interface) (*Manager, error) {
	var strategy Strategy
	if server.IsProduction() {
		goose, err := NewGooseStrategy(driver, log)
		if err != nil {
			return nil, err
		}
		strategy = goose
	} else {
		strategy = NewGormAutoMigrateStrategy(log)
	}

	return NewManagerWithStrategy(strategy, log), nil
}

func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}
}

func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	return nil
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
