package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m := New(&cfg, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

func TestExecute_SerializesPerUser(t *testing.T) {
	m := newTestManager(t, Config{QueueCapacity: 100, WriteTimeout: 5 * time.Second})

	var running atomic.Int32
	var maxRunning atomic.Int32
	var order []int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := m.Execute(context.Background(), "u1", func(ctx context.Context) error {
				n := running.Add(1)
				if n > maxRunning.Load() {
					maxRunning.Store(n)
				}
				time.Sleep(time.Millisecond)
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				running.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Len(t, order, 20)
	assert.Equal(t, int64(20), m.GetMetrics().Executed)
}

func TestExecute_ReturnsOperationError(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	want := errors.New("boom")
	err := m.Execute(context.Background(), "u1", func(ctx context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}

func TestExecute_TimeoutDropsPendingOperation(t *testing.T) {
	m := newTestManager(t, Config{QueueCapacity: 10, WriteTimeout: 50 * time.Millisecond})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "u1", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var ran atomic.Bool
	err := m.Execute(context.Background(), "u1", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, ErrWriteTimeout)

	close(release)
	// The next operation proves the dropped one was skipped by the worker
	require.NoError(t, m.Execute(context.Background(), "u1", func(ctx context.Context) error { return nil }))
	assert.False(t, ran.Load())
}

func TestExecute_QueueFull(t *testing.T) {
	m := newTestManager(t, Config{QueueCapacity: 1, WriteTimeout: time.Second})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "u1", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// fills the single slot
	go func() {
		_ = m.Execute(context.Background(), "u1", func(ctx context.Context) error { return nil })
	}()
	assert.Eventually(t, func() bool { return m.QueuedCount("u1") == 1 }, time.Second, time.Millisecond)

	err := m.Execute(context.Background(), "u1", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueFull)
	close(release)
}

func TestExecute_DifferentUsersRunConcurrently(t *testing.T) {
	m := newTestManager(t, Config{QueueCapacity: 10, WriteTimeout: 2 * time.Second})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "u1", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := m.Execute(context.Background(), "u2", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, 2, m.QueueCount())
	close(release)
}

func TestExecute_CancelledContext(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Execute(ctx, "u1", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShutdown(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Execute(context.Background(), "u1", func(ctx context.Context) error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	assert.True(t, m.IsClosed())

	err := m.Execute(context.Background(), "u1", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueClosed)
	// second shutdown is a no-op
	assert.NoError(t, m.Shutdown(ctx))
}

func TestDoCleanupRemovesIdleQueues(t *testing.T) {
	m := newTestManager(t, Config{QueueCapacity: 10, WriteTimeout: time.Second, IdleTimeout: time.Hour})
	require.NoError(t, m.Execute(context.Background(), "u1", func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, m.QueueCount())

	v, ok := m.queues.Load("u1")
	require.True(t, ok)
	v.(*userWriteQueue).lastUsed.Store(time.Now().Add(-2 * time.Hour).UnixNano())

	m.doCleanup()
	assert.Equal(t, 0, m.QueueCount())

	// a new queue is created on demand
	require.NoError(t, m.Execute(context.Background(), "u1", func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, m.QueueCount())
}
