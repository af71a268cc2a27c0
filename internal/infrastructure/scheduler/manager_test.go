package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutystream/scouty/internal/shared/logger"
)

type countingJob struct {
	runs int32
	err  error
}

func (j *countingJob) Execute(ctx context.Context) (int, error) {
	atomic.AddInt32(&j.runs, 1)
	return 1, j.err
}

func TestSchedulerManager_RunsLedgerSync(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewNop())
	require.NoError(t, err)

	job := &countingJob{}
	require.NoError(t, m.RegisterLedgerSyncJob(job, 20*time.Millisecond))
	require.Len(t, m.Jobs(), 1)
	assert.Equal(t, "ledger-sync", m.Jobs()[0].Name())

	m.Start()
	m.Start()
	assert.True(t, m.IsStarted())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&job.runs) >= 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	require.NoError(t, m.Stop())
}

func TestSchedulerManager_JobErrorsDoNotStopScheduling(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewNop())
	require.NoError(t, err)

	job := &countingJob{err: errors.New("rpc down")}
	require.NoError(t, m.RegisterLedgerSyncJob(job, 20*time.Millisecond))
	m.Start()
	defer m.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&job.runs) >= 2 }, 2*time.Second, 10*time.Millisecond)
}
