package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/application/payment/paymentgateway"
	"github.com/scoutystream/scouty/internal/domain/payment"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

const (
	verificationKeyPrefix  = "scouty:receipt:"
	defaultVerificationTTL = 24 * time.Hour
)

type cachedRecord struct {
	AssetID       uint64          `json:"asset_id"`
	PayerID       string          `json:"payer_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	Provider      string          `json:"provider"`
	Origin        string          `json:"origin"`
	VerifiedAt    time.Time       `json:"verified_at"`
}

// VerificationCache remembers verified receipts in Redis so a resubmitted
// receipt yields the same record without another facilitator round-trip.
// Only successful verifications are cached. Redis failures fall through to
// the wrapped verifier.
type VerificationCache struct {
	next   paymentgateway.Verifier
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

func NewVerificationCache(next paymentgateway.Verifier, client *redis.Client, ttl time.Duration, log logger.Interface) *VerificationCache {
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	return &VerificationCache{next: next, client: client, ttl: ttl, logger: log}
}

func (c *VerificationCache) Provider() string { return c.next.Provider() }

func (c *VerificationCache) key(receipt payment.Receipt) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", c.next.Provider(), receipt.AssetID, receipt.Token)))
	return verificationKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *VerificationCache) VerifyReceipt(ctx context.Context, receipt payment.Receipt) *payment.Record {
	if receipt.IsEmpty() {
		return nil
	}
	key := c.key(receipt)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedRecord
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &payment.Record{
				AssetID:       cached.AssetID,
				PayerID:       cached.PayerID,
				Amount:        cached.Amount,
				TransactionID: cached.TransactionID,
				Provider:      cached.Provider,
				Origin:        payment.Origin(cached.Origin),
				VerifiedAt:    cached.VerifiedAt,
			}
		}
		c.logger.Warnw("discarding unreadable cached verification", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warnw("verification cache read failed", "error", err)
	}

	record := c.next.VerifyReceipt(ctx, receipt)
	if record == nil {
		return nil
	}

	data, err := json.Marshal(cachedRecord{
		AssetID:       record.AssetID,
		PayerID:       record.PayerID,
		Amount:        record.Amount,
		TransactionID: record.TransactionID,
		Provider:      record.Provider,
		Origin:        string(record.Origin),
		VerifiedAt:    record.VerifiedAt,
	})
	if err == nil {
		// the request context may already be closing; the write is cheap
		if err := c.client.Set(context.WithoutCancel(ctx), key, data, c.ttl).Err(); err != nil {
			c.logger.Warnw("verification cache write failed", "error", err)
		}
	}
	return record
}

// ProcessWebhook is not cached; webhook idempotency is handled by the
// access cache short-circuit.
func (c *VerificationCache) ProcessWebhook(ctx context.Context, payload []byte, signature string) *payment.Record {
	return c.next.ProcessWebhook(ctx, payload, signature)
}
