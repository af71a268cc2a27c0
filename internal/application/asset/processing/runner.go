// Package processing runs post-upload work for assets as awaitable,
// cancellable tasks.
package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/shared/goroutine"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// Transcoder prepares an uploaded asset for streaming.
type Transcoder interface {
	Transcode(ctx context.Context, a *asset.Asset) error
}

// ErrAlreadyRunning is returned when an asset already has a task in flight.
var ErrAlreadyRunning = errors.New("asset is already being processed")

// Task is a handle on one processing run.
type Task struct {
	assetID uint64
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

func (t *Task) AssetID() uint64 { return t.assetID }

// Done is closed once the task has finished and the asset status is stored.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel stops the task. The asset ends up failed unless it already finished.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the task result; it is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Runner starts one task per asset and moves the asset to ready or failed
// when the transcoder returns.
type Runner struct {
	assets     asset.Repository
	transcoder Transcoder
	logger     logger.Interface

	mu    sync.Mutex
	tasks map[uint64]*Task
}

func NewRunner(assets asset.Repository, transcoder Transcoder, logger logger.Interface) *Runner {
	return &Runner{
		assets:     assets,
		transcoder: transcoder,
		logger:     logger,
		tasks:      make(map[uint64]*Task),
	}
}

// Start begins processing a. The asset must already be stored in the
// processing state.
func (r *Runner) Start(a *asset.Asset) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[a.ID()]; ok {
		return nil, ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{assetID: a.ID(), cancel: cancel, done: make(chan struct{})}
	r.tasks[a.ID()] = task

	goroutine.SafeGo(r.logger, fmt.Sprintf("asset-processing-%d", a.ID()), func() {
		defer r.finish(task)
		task.err = r.run(ctx, a)
	})
	return task, nil
}

// Task returns the in-flight task for an asset, if any.
func (r *Runner) Task(assetID uint64) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[assetID]
	return t, ok
}

// IsProcessing reports whether a task for assetID is in flight.
func (r *Runner) IsProcessing(assetID uint64) bool {
	_, ok := r.Task(assetID)
	return ok
}

// Shutdown cancels every running task and waits for them to store their
// final status.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	tasks := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	r.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
	for _, t := range tasks {
		select {
		case <-t.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, a *asset.Asset) error {
	start := time.Now()
	transcodeErr := r.transcoder.Transcode(ctx, a)

	// the final status is stored even when the task was cancelled
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	current, err := r.assets.GetByID(storeCtx, a.ID())
	if err != nil {
		return fmt.Errorf("failed to reload asset: %w", err)
	}
	if current == nil {
		return asset.ErrAssetNotFound
	}

	if transcodeErr != nil {
		if err := current.MarkFailed(); err != nil {
			return err
		}
		if err := r.assets.Update(storeCtx, current); err != nil {
			return fmt.Errorf("failed to store failed asset: %w", err)
		}
		r.logger.Warnw("asset processing failed", "asset_id", a.ID(), "error", transcodeErr)
		return transcodeErr
	}

	if err := current.MarkReady(); err != nil {
		return err
	}
	if err := r.assets.Update(storeCtx, current); err != nil {
		return fmt.Errorf("failed to store ready asset: %w", err)
	}
	r.logger.Infow("asset processing completed", "asset_id", a.ID(), "duration", time.Since(start))
	return nil
}

func (r *Runner) finish(task *Task) {
	if recovered := recover(); recovered != nil {
		task.err = fmt.Errorf("processing panicked: %v", recovered)
		r.logger.Errorw("asset processing panicked", "asset_id", task.assetID, "panic", recovered)
	}
	r.mu.Lock()
	delete(r.tasks, task.assetID)
	r.mu.Unlock()
	close(task.done)
}

// DelayTranscoder simulates transcoding by waiting a fixed duration.
type DelayTranscoder struct {
	Delay time.Duration
}

func (d DelayTranscoder) Transcode(ctx context.Context, a *asset.Asset) error {
	timer := time.NewTimer(d.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
