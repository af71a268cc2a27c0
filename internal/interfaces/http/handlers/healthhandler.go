package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/version"
)

const healthProbeTimeout = 3 * time.Second

type ledgerInfoProvider interface {
	NetworkInfo() ledger.NetworkInfo
}

type grantCounter interface {
	Count(ctx context.Context) (int64, error)
}

type assetStatusCounter interface {
	CountByStatus(ctx context.Context) (map[asset.Status]int64, error)
}

type StorageInfo struct {
	Provider string `json:"provider"`
	BaseURL  string `json:"baseUrl,omitempty"`
}

type PaymentInfo struct {
	Provider          string `json:"provider"`
	Currency          string `json:"currency"`
	WebhookConfigured bool   `json:"webhookConfigured"`
	APIConfigured     bool   `json:"apiConfigured"`
}

type StoreStats struct {
	Grants         int64            `json:"grants"`
	AssetsByStatus map[string]int64 `json:"assetsByStatus"`
}

type HealthServices struct {
	Ledger   ledger.NetworkInfo `json:"ledger"`
	Storage  StorageInfo        `json:"storage"`
	Payments PaymentInfo        `json:"payments"`
}

type HealthResponse struct {
	Status      string         `json:"status" example:"healthy"`
	Timestamp   time.Time      `json:"timestamp"`
	Version     string         `json:"version"`
	Environment string         `json:"environment"`
	Services    HealthServices `json:"services"`
	Database    *StoreStats    `json:"database,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type HealthHandler struct {
	ledger      ledgerInfoProvider
	grants      grantCounter
	assets      assetStatusCounter
	storage     StorageInfo
	payments    PaymentInfo
	environment string
	logger      logger.Interface
}

func NewHealthHandler(
	ledger ledgerInfoProvider,
	grants grantCounter,
	assets assetStatusCounter,
	storage StorageInfo,
	payments PaymentInfo,
	environment string,
	logger logger.Interface,
) *HealthHandler {
	return &HealthHandler{
		ledger:      ledger,
		grants:      grants,
		assets:      assets,
		storage:     storage,
		payments:    payments,
		environment: environment,
		logger:      logger,
	}
}

// HealthCheck godoc
//
//	@Summary		Service health
//	@Description	Reports collaborator configuration and store statistics. Returns 503 when the store cannot be read.
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/api/health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Version:     version.String(),
		Environment: h.environment,
		Services: HealthServices{
			Ledger:   h.ledger.NetworkInfo(),
			Storage:  h.storage,
			Payments: h.payments,
		},
	}

	stats, err := h.storeStats(c.Request.Context())
	if err != nil {
		h.logger.Errorw("health check failed to read store", "error", err)
		resp.Status = "unhealthy"
		resp.Error = "store unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp.Database = stats

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) storeStats(ctx context.Context) (*StoreStats, error) {
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	stats := &StoreStats{AssetsByStatus: make(map[string]int64)}
	var byStatus map[asset.Status]int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := h.grants.Count(gctx)
		if err != nil {
			return err
		}
		stats.Grants = n
		return nil
	})
	g.Go(func() error {
		counts, err := h.assets.CountByStatus(gctx)
		if err != nil {
			return err
		}
		byStatus = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for status, n := range byStatus {
		stats.AssetsByStatus[status.String()] = n
	}
	return stats, nil
}
