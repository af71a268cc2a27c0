package migration

import (
	"embed"
	"fmt"
	"io"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/scoutystream/scouty/internal/shared/logger"
)

//go:embed scripts
var scripts embed.FS

// goose keeps dialect and base FS in package state.
var gooseMu sync.Mutex

// Strategy defines the interface for different migration strategies
type Strategy interface {
	Migrate(db *gorm.DB) error
	GetName() string
}

// GooseStrategy applies the versioned SQL scripts embedded in the binary.
type GooseStrategy struct {
	driver string
	logger logger.Interface
}

// NewGooseStrategy selects the script set for driver (mysql or sqlite).
func NewGooseStrategy(driver string, log logger.Interface) (*GooseStrategy, error) {
	switch driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("goose migrations are not available for driver %q", driver)
	}
	return &GooseStrategy{
		driver: driver,
		logger: log.With("component", "migration.goose"),
	}, nil
}

func (s *GooseStrategy) dialect() string {
	if s.driver == "sqlite" {
		return "sqlite3"
	}
	return "mysql"
}

func (s *GooseStrategy) dir() string {
	return "scripts/" + s.driver
}

// with runs fn with goose configured for this strategy.
func (s *GooseStrategy) with(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scripts)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(s.dialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn()
}

func (s *GooseStrategy) Migrate(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return s.with(func() error {
		currentVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			s.logger.Errorw("failed to get current version", "error", err)
			return fmt.Errorf("failed to get current version: %w", err)
		}

		if err := goose.Up(sqlDB, s.dir()); err != nil {
			s.logger.Errorw("migration failed", "error", err)
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		finalVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}

		s.logger.Infow("migration completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion)
		return nil
	})
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return s.with(func() error {
		for i := 0; i < steps; i++ {
			if err := goose.Down(sqlDB, s.dir()); err != nil {
				s.logger.Errorw("down migration failed", "error", err)
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}
		s.logger.Infow("down migration completed successfully")
		return nil
	})
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	var version int64
	err = s.with(func() error {
		v, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// Status prints the applied state of every script to out.
func (s *GooseStrategy) Status(db *gorm.DB, out io.Writer) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return s.with(func() error {
		migrations, err := goose.CollectMigrations(s.dir(), 0, goose.MaxVersion)
		if err != nil {
			return fmt.Errorf("failed to collect migrations: %w", err)
		}
		current, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		for _, m := range migrations {
			state := "pending"
			if m.Version <= current {
				state = "applied"
			}
			fmt.Fprintf(out, "  %05d  %-8s %s\n", m.Version, state, m.Source)
		}
		return nil
	})
}
