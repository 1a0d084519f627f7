package executor

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

func newTestPool(t *testing.T, workers, queueSize int) *Pool {
	t.Helper()

	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)

	return NewPool(workers, queueSize, log)
}

func TestPool_RunsAllTasks(t *testing.T) {
	pool := newTestPool(t, 4, 16)

	var counter atomic.Uint64
	for i := 0; i < 100; i++ {
		require.NoError(t, pool.Submit(func() {
			counter.Add(1)
		}))
	}

	pool.Stop()

	assert.Equal(t, uint64(100), counter.Load())
	assert.Equal(t, uint64(100), pool.Submitted())
	assert.Equal(t, uint64(100), pool.Completed())
	assert.Equal(t, uint64(0), pool.Failed())
	assert.Equal(t, uint64(0), pool.Pending())
}

func TestPool_PanicIsolation(t *testing.T) {
	pool := newTestPool(t, 2, 8)

	var counter atomic.Uint64
	require.NoError(t, pool.Submit(func() {
		panic("boom")
	}))
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(func() {
			counter.Add(1)
		}))
	}

	pool.Stop()

	// A panicking task is counted as failed; the workers keep going.
	assert.Equal(t, uint64(10), counter.Load())
	assert.Equal(t, uint64(1), pool.Failed())
	assert.Equal(t, uint64(10), pool.Completed())
}

func TestPool_RejectsAfterStop(t *testing.T) {
	pool := newTestPool(t, 1, 1)
	pool.Stop()

	err := pool.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolStopped)

	// Stop is safe to call again.
	pool.Stop()
}

func TestPool_RejectsNilTask(t *testing.T) {
	pool := newTestPool(t, 1, 1)
	defer pool.Stop()

	assert.Error(t, pool.Submit(nil))
}

func TestPool_Stats(t *testing.T) {
	pool := newTestPool(t, 3, 8)
	require.NoError(t, pool.Submit(func() {}))
	pool.Stop()

	stats := pool.Stats()
	assert.Contains(t, stats, "workers=3")
	assert.Contains(t, stats, "completed=1")
}
