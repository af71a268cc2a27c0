package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/infrastructure/persistence/models"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.AccessGrantModel{}, &models.AssetModel{}))
	return db
}

func newGrant(t *testing.T, user string, assetID uint64, tx string) *access.Grant {
	t.Helper()
	g, err := access.NewGrant(user, assetID, access.SourcePayment, tx)
	require.NoError(t, err)
	return g
}

func grantRepositories(t *testing.T) map[string]access.Repository {
	return map[string]access.Repository{
		"gorm":   NewAccessGrantRepository(setupTestDB(t), logger.NewNop()),
		"memory": NewMemoryAccessGrantRepository(),
	}
}

func TestAccessGrantRepository_GrantIsUpsert(t *testing.T) {
	for name, repo := range grantRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := newGrant(t, "0xABC", 42, "tx_1")
			require.NoError(t, repo.Grant(ctx, first))
			assert.NotZero(t, first.ID())

			second := newGrant(t, "0xABC", 42, "tx_2")
			require.NoError(t, repo.Grant(ctx, second))
			assert.Equal(t, first.ID(), second.ID())

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 1, count)

			stored, err := repo.Get(ctx, "0xABC", 42)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, "tx_2", stored.TransactionIDValue())

			byTx, err := repo.GetByTransactionID(ctx, "tx_2")
			require.NoError(t, err)
			require.NotNil(t, byTx)
			assert.Equal(t, uint64(42), byTx.AssetID())

			missing, err := repo.GetByTransactionID(ctx, "tx_1")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestAccessGrantRepository_GrantBatch(t *testing.T) {
	for name, repo := range grantRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Grant(ctx, newGrant(t, "0x1", 3, "")))

			batch := []*access.Grant{newGrant(t, "0x1", 3, ""), newGrant(t, "0x2", 3, "")}
			require.NoError(t, repo.GrantBatch(ctx, batch))

			assert.NotZero(t, batch[0].ID())
			assert.NotZero(t, batch[1].ID())
			assert.NotEqual(t, batch[0].ID(), batch[1].ID())

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 2, count)
		})
	}
}

func TestAccessGrantRepository_GrantBatchRollsBack(t *testing.T) {
	db := setupTestDB(t)
	creates := 0
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_second_grant", func(tx *gorm.DB) {
		if tx.Statement.Table != "access_grants" {
			return
		}
		creates++
		if creates == 2 {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))
	repo := NewAccessGrantRepository(db, logger.NewNop())
	ctx := context.Background()

	err := repo.GrantBatch(ctx, []*access.Grant{newGrant(t, "0x1", 3, ""), newGrant(t, "0x2", 3, "")})
	require.Error(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestAccessGrantRepository_ExistsAndRevoke(t *testing.T) {
	for name, repo := range grantRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Grant(ctx, newGrant(t, "0xABC", 42, "tx_1")))

			ok, err := repo.Exists(ctx, "0xABC", 42)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = repo.Exists(ctx, "0xabc", 42)
			require.NoError(t, err)
			assert.False(t, ok, "user ids are compared exactly")

			removed, err := repo.Revoke(ctx, "0xABC", 42)
			require.NoError(t, err)
			assert.True(t, removed)

			removed, err = repo.Revoke(ctx, "0xABC", 42)
			require.NoError(t, err)
			assert.False(t, removed)

			g, err := repo.Get(ctx, "0xABC", 42)
			require.NoError(t, err)
			assert.Nil(t, g)
		})
	}
}

func TestAccessGrantRepository_LedgerPending(t *testing.T) {
	for name, repo := range grantRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			synced := newGrant(t, "0x1", 1, "")
			synced.MarkLedgerSynced(time.Now().UTC())
			require.NoError(t, repo.Grant(ctx, synced))

			pending := newGrant(t, "0x2", 1, "")
			require.NoError(t, repo.Grant(ctx, pending))

			exhausted := newGrant(t, "0x3", 1, "")
			for i := 0; i < 3; i++ {
				exhausted.RecordLedgerFailure()
			}
			require.NoError(t, repo.Grant(ctx, exhausted))

			list, err := repo.ListLedgerPending(ctx, 10, 3)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "0x2", list[0].UserID())

			list[0].RecordLedgerFailure()
			require.NoError(t, repo.UpdateLedgerState(ctx, list[0]))
			list[0].MarkLedgerSynced(time.Now().UTC())
			require.NoError(t, repo.UpdateLedgerState(ctx, list[0]))

			stored, err := repo.Get(ctx, "0x2", 1)
			require.NoError(t, err)
			assert.True(t, stored.LedgerSynced())
			assert.Equal(t, 1, stored.LedgerAttempts())
			assert.NotNil(t, stored.LedgerSyncedAt())

			list, err = repo.ListLedgerPending(ctx, 10, 3)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestAccessGrantRepository_ListByUserNewestFirst(t *testing.T) {
	for name, repo := range grantRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Grant(ctx, newGrant(t, "0xABC", 1, "tx_a")))
			time.Sleep(5 * time.Millisecond)
			require.NoError(t, repo.Grant(ctx, newGrant(t, "0xABC", 2, "tx_b")))
			require.NoError(t, repo.Grant(ctx, newGrant(t, "0xDEF", 1, "tx_c")))

			list, err := repo.ListByUser(ctx, "0xABC")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, uint64(2), list[0].AssetID())

			byAsset, err := repo.ListByAsset(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, byAsset, 2)
		})
	}
}

func assetRepositories(t *testing.T) map[string]asset.Repository {
	return map[string]asset.Repository{
		"gorm":   NewAssetRepository(setupTestDB(t), logger.NewNop()),
		"memory": NewMemoryAssetRepository(),
	}
}

func TestAssetRepository_RoundTrip(t *testing.T) {
	for name, repo := range assetRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			a, err := asset.NewCatalogEntry("Derby", "Full match", decimal.RequireFromString("5.99"),
				asset.ProviderYouTube, "dQw4w9WgXcQ", []string{"football", "derby"})
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, a))
			require.NotZero(t, a.ID())

			got, err := repo.GetByID(ctx, a.ID())
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Derby", got.Title())
			assert.True(t, got.Price().Equal(decimal.RequireFromString("5.99")))
			assert.Equal(t, []string{"football", "derby"}, got.Tags())
			assert.Equal(t, asset.ProviderYouTube, got.Provider())
			assert.Equal(t, "dQw4w9WgXcQ", got.YouTubeID())

			missing, err := repo.GetByID(ctx, 9999)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestAssetRepository_UploadLifecycle(t *testing.T) {
	for name, repo := range assetRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			a, err := asset.NewUpload("cup.mp4", 4096, "video/mp4", decimal.RequireFromString("5.99"))
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, a))

			require.NoError(t, a.Commit("Cup Final", "", decimal.RequireFromString("2.50"), nil))
			require.NoError(t, repo.Update(ctx, a))
			require.NoError(t, a.MarkReady())
			require.NoError(t, repo.Update(ctx, a))

			ready := asset.StatusReady
			list, err := repo.List(ctx, &ready)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "Cup Final", list[0].Title())
			assert.True(t, list[0].Price().Equal(decimal.RequireFromString("2.5")))

			counts, err := repo.CountByStatus(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 1, counts[asset.StatusReady])

			byIDs, err := repo.GetByIDs(ctx, []uint64{a.ID(), 777})
			require.NoError(t, err)
			assert.Len(t, byIDs, 1)
		})
	}
}
