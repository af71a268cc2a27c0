package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/application/asset/processing"
	appstorage "github.com/scoutystream/scouty/internal/application/asset/storage"
	"github.com/scoutystream/scouty/internal/application/payment/paymentgateway"
	"github.com/scoutystream/scouty/internal/domain/payment"
	"github.com/scoutystream/scouty/internal/infrastructure/auth"
	"github.com/scoutystream/scouty/internal/infrastructure/cache"
	"github.com/scoutystream/scouty/internal/infrastructure/config"
	infraLedger "github.com/scoutystream/scouty/internal/infrastructure/ledger"
	"github.com/scoutystream/scouty/internal/infrastructure/metrics"
	infraPayment "github.com/scoutystream/scouty/internal/infrastructure/payment"
	"github.com/scoutystream/scouty/internal/infrastructure/permission"
	"github.com/scoutystream/scouty/internal/infrastructure/ratelimit"
	"github.com/scoutystream/scouty/internal/infrastructure/scheduler"
	"github.com/scoutystream/scouty/internal/infrastructure/storage"
	"github.com/scoutystream/scouty/internal/interfaces/http/middleware"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/services/markdown"
	"github.com/scoutystream/scouty/internal/shared/version"
)

// collaborators are the provider-specific implementations chosen from config.
type collaborators struct {
	issuer   paymentgateway.ChallengeIssuer
	verifier paymentgateway.Verifier
	storage  appstorage.Provider
	policy   payment.AmountPolicy
	renderer markdown.Renderer

	defaultPrice decimal.Decimal
}

// ============================================================
// Section 1: Infrastructure - Redis, metrics, repositories, auth
// ============================================================

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.cfg
	log := c.log

	if cfg.Redis.Enabled {
		client, err := initRedis(ctx, cfg, log)
		if err != nil {
			return err
		}
		c.redis = client
	}

	c.metrics = metrics.NewRegistry()
	c.metrics.SetBuildInfo(version.String(), version.Commit)

	repos, err := newRepositories(c.db, cfg.Database.Driver, log)
	if err != nil {
		return err
	}
	c.repos = repos

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	enforcer, err := permission.NewEnforcer(log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to build permission enforcer: %w", err)
	}

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(enforcer, log)
	c.rateLimiter = middleware.NewRateLimiter(ratelimit.New(cfg.RateLimit, c.redis), log)

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(ctx context.Context, cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.GetAddr(), err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}

// ============================================================
// Section 2: Collaborators - ledger, payment provider, storage
// ============================================================

func (c *Container) initCollaborators(ctx context.Context) (*collaborators, error) {
	cfg := c.cfg
	log := c.log

	ledgerClient, closeLedger, err := infraLedger.New(ctx, cfg.Ledger, log.Named("ledger"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	c.ledger = ledgerClient
	c.ledgerClose = closeLedger
	if !ledgerClient.IsConfigured() {
		log.Warnw("ledger is not configured; access is decided by the local cache only",
			"provider", cfg.Ledger.Provider)
	}

	httpClient := &http.Client{Timeout: cfg.Payment.VerifyTimeout}
	issuer, verifier, err := infraPayment.New(cfg.Payment, httpClient, log.Named("payment"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment provider: %w", err)
	}
	if c.redis != nil {
		verifier = cache.NewVerificationCache(verifier, c.redis, cfg.Payment.VerificationCacheTTL, log.Named("verification_cache"))
	}

	policy, err := payment.ParseAmountPolicy(cfg.Payment.AmountPolicy)
	if err != nil {
		return nil, err
	}

	defaultPrice, err := decimal.NewFromString(cfg.Processing.DefaultPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid processing.default_price %q: %w", cfg.Processing.DefaultPrice, err)
	}

	storageProvider, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage provider: %w", err)
	}

	c.runner = processing.NewRunner(
		c.repos.assets,
		processing.DelayTranscoder{Delay: cfg.Processing.SimulatedDuration},
		log.Named("processing"),
	)

	log.Infow("collaborators initialized",
		"ledger", ledgerClient.NetworkInfo().Provider,
		"payment", verifier.Provider(),
		"storage", storageProvider.Name(),
		"amount_policy", policy)

	return &collaborators{
		issuer:   issuer,
		verifier: verifier,
		storage:  storageProvider,
		policy:   policy,
		renderer: markdown.NewRenderer(),

		defaultPrice: defaultPrice,
	}, nil
}

// ============================================================
// Section 4: Background jobs
// ============================================================

func (c *Container) initScheduler() error {
	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	c.schedulerManager = manager

	if !c.ledger.IsConfigured() {
		c.log.Infow("ledger sync job not registered: ledger is not configured")
		return nil
	}

	return manager.RegisterLedgerSyncJob(c.ucs.syncLedgerUC, c.cfg.Scheduler.LedgerSyncInterval)
}
