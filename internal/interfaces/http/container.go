package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/application/asset/processing"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/infrastructure/auth"
	"github.com/scoutystream/scouty/internal/infrastructure/config"
	"github.com/scoutystream/scouty/internal/infrastructure/metrics"
	"github.com/scoutystream/scouty/internal/infrastructure/scheduler"
	"github.com/scoutystream/scouty/internal/interfaces/http/middleware"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases,
// handlers and background services, and owns their shutdown.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	// Repositories
	repos *repositories

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	rateLimiter          *middleware.RateLimiter

	// Collaborators
	jwtSvc      *auth.JWTService
	metrics     *metrics.Registry
	ledger      ledger.Ledger
	ledgerClose func()

	// Background services
	runner           *processing.Runner
	schedulerManager *scheduler.SchedulerManager
}

// NewContainer wires every component. db may be nil when the in-memory
// store is configured.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, metrics, repositories, auth
	if err := c.initInfrastructure(ctx); err != nil {
		_ = c.Shutdown(ctx)
		return nil, err
	}

	// Section 2: Collaborators - ledger, payment provider, storage
	collab, err := c.initCollaborators(ctx)
	if err != nil {
		_ = c.Shutdown(ctx)
		return nil, err
	}

	// Section 3: Use cases and handlers
	c.ucs = newUseCases(c, collab)
	c.hdlrs = newHandlers(c, collab)

	// Section 4: Background jobs
	if err := c.initScheduler(); err != nil {
		_ = c.Shutdown(ctx)
		return nil, err
	}

	return c, nil
}

// Engine returns the gin engine; SetupRoutes must have been called.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Assets exposes the asset store for catalog seeding.
func (c *Container) Assets() asset.Repository {
	return c.repos.assets
}

// StartBackground starts the scheduler. It is a no-op when no job is registered.
func (c *Container) StartBackground() {
	if c.schedulerManager != nil && len(c.schedulerManager.Jobs()) > 0 {
		c.schedulerManager.Start()
	}
}

// Shutdown stops background work first, then releases connections. It is
// safe to call on a partially built container.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.runner != nil {
		if err := c.runner.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if c.ledgerClose != nil {
		c.ledgerClose()
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		c.log.Errorw("container shutdown finished with errors", "error", errors.Join(errs...))
	}
	return errors.Join(errs...)
}
