package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/pkg/safe_close"
	"github.com/haierkeys/fast-note-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTask struct {
	name    string
	spec    string
	startup bool
	runs    atomic.Int32
	block   chan struct{}
	err     error
}

func (f *fakeTask) Name() string       { return f.name }
func (f *fakeTask) Spec() string       { return f.spec }
func (f *fakeTask) IsStartupRun() bool { return f.startup }

func (f *fakeTask) Run(ctx context.Context) error {
	f.runs.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func TestScheduler_StartupRun(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	task := &fakeTask{name: "startup", spec: "@every 1h", startup: true}
	require.NoError(t, s.AddTask(task))
	s.Start()

	assert.Eventually(t, func() bool { return task.runs.Load() == 1 }, time.Second, time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(nil, safe_close.NewSafeClose())
	err := s.AddTask(&fakeTask{name: "bad", spec: "every now and then"})
	assert.ErrorContains(t, err, "invalid cron spec")
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_EmptySpecDisables(t *testing.T) {
	s := NewScheduler(nil, safe_close.NewSafeClose())
	task := &fakeTask{name: "off", startup: true}
	require.NoError(t, s.AddTask(task))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int32(0), task.runs.Load())
}

func TestScheduler_CloseCancelsRunningTask(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	task := &fakeTask{name: "slow", spec: "@every 1h", startup: true, block: make(chan struct{})}
	require.NoError(t, s.AddTask(task))
	s.Start()
	require.Eventually(t, func() bool { return task.runs.Load() == 1 }, time.Second, time.Millisecond)

	closed := make(chan error, 1)
	go func() {
		sc.SendCloseSignal(nil)
		closed <- sc.WaitClosed()
	}()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_FailingTaskIsLogged(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &fakeTask{name: "fails", spec: "@every 1h", startup: true, err: errors.New("boom")}
	require.NoError(t, s.AddTask(task))
	s.Start()
	assert.Eventually(t, func() bool { return task.runs.Load() == 1 }, time.Second, time.Millisecond)
	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

type optimizeCounter struct {
	domain.NoteRepository
	calls atomic.Int32
}

func (o *optimizeCounter) OptimizeIndex(ctx context.Context) error {
	o.calls.Add(1)
	return nil
}

func TestFTSOptimizeTask(t *testing.T) {
	repo := &optimizeCounter{}
	task := NewFTSOptimizeTask(repo, "0 3 * * *")
	assert.Equal(t, "FTSOptimize", task.Name())
	assert.Equal(t, "0 3 * * *", task.Spec())
	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestWriteQueueStatsTask(t *testing.T) {
	q := writequeue.New(nil, nil)
	t.Cleanup(func() { _ = q.Shutdown(context.Background()) })
	task := NewWriteQueueStatsTask(q, zap.NewNop(), "@every 10m")
	assert.NoError(t, task.Run(context.Background()))
}
