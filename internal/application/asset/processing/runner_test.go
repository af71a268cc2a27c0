package processing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutystream/scouty/internal/application/access/testutil"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

type funcTranscoder func(ctx context.Context, a *asset.Asset) error

func (f funcTranscoder) Transcode(ctx context.Context, a *asset.Asset) error { return f(ctx, a) }

func processingAsset(t *testing.T, repo *testutil.MockAssetRepository) *asset.Asset {
	t.Helper()
	a, err := asset.NewUpload("match.mp4", 2048, "video/mp4", decimal.RequireFromString("5.99"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), a))
	require.NoError(t, a.Commit("Match", "", decimal.RequireFromString("5.99"), nil))
	require.NoError(t, repo.Update(context.Background(), a))
	return a
}

func TestRunner_CompletesToReady(t *testing.T) {
	repo := testutil.NewMockAssetRepository()
	a := processingAsset(t, repo)
	runner := NewRunner(repo, DelayTranscoder{Delay: time.Millisecond}, logger.NewNop())

	task, err := runner.Start(a)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, task.Wait(ctx))

	stored, _ := repo.GetByID(context.Background(), a.ID())
	assert.Equal(t, asset.StatusReady, stored.Status())

	_, running := runner.Task(a.ID())
	assert.False(t, running)
}

func TestRunner_TranscodeErrorMarksFailed(t *testing.T) {
	repo := testutil.NewMockAssetRepository()
	a := processingAsset(t, repo)
	boom := errors.New("unsupported codec")
	runner := NewRunner(repo, funcTranscoder(func(context.Context, *asset.Asset) error { return boom }), logger.NewNop())

	task, err := runner.Start(a)
	require.NoError(t, err)
	<-task.Done()

	assert.ErrorIs(t, task.Err(), boom)
	stored, _ := repo.GetByID(context.Background(), a.ID())
	assert.Equal(t, asset.StatusFailed, stored.Status())
}

func TestRunner_CancelMarksFailed(t *testing.T) {
	repo := testutil.NewMockAssetRepository()
	a := processingAsset(t, repo)
	runner := NewRunner(repo, DelayTranscoder{Delay: time.Hour}, logger.NewNop())

	task, err := runner.Start(a)
	require.NoError(t, err)

	_, err = runner.Start(a)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.True(t, runner.IsProcessing(a.ID()))

	task.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorIs(t, task.Wait(ctx), context.Canceled)

	stored, _ := repo.GetByID(context.Background(), a.ID())
	assert.Equal(t, asset.StatusFailed, stored.Status())
	assert.False(t, runner.IsProcessing(a.ID()))
}

func TestRunner_Shutdown(t *testing.T) {
	repo := testutil.NewMockAssetRepository()
	a := processingAsset(t, repo)
	runner := NewRunner(repo, DelayTranscoder{Delay: time.Hour}, logger.NewNop())

	task, err := runner.Start(a)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, runner.Shutdown(ctx))

	select {
	case <-task.Done():
	default:
		t.Fatal("task still running after shutdown")
	}
}
