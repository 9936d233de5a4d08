// Package task 定时维护任务
package task

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/fast-note-service/pkg/logger"
	"github.com/haierkeys/fast-note-service/pkg/safe_close"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Spec() string                  // cron 表达式，支持 @every 1h 等描述符
	Run(ctx context.Context) error // 执行任务
	IsStartupRun() bool            // 是否启动时立即执行一次
}

// Scheduler runs tasks on their cron schedules; a task never overlaps with itself
// Scheduler 按 cron 表达式调度任务，同一任务不会并发执行
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	chain  cron.Chain
	parser cron.Parser
	sc     *safe_close.SafeClose
	tasks  []Task

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler 创建任务调度器
func NewScheduler(zl *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	if zl == nil {
		zl = zap.NewNop()
	}
	cl := cronLogger{zl.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		logger: zl,
		cron:   cron.New(cron.WithParser(parser), cron.WithLogger(cl)),
		chain:  cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		parser: parser,
		sc:     sc,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTask registers task, an empty spec disables it
// AddTask 添加任务，spec 为空时跳过
func (s *Scheduler) AddTask(task Task) error {
	if task.Spec() == "" {
		s.logger.Info("task disabled", zap.String(logger.FieldTask, task.Name()))
		return nil
	}
	if _, err := s.parser.Parse(task.Spec()); err != nil {
		return errors.Wrapf(err, "task %s: invalid cron spec %q", task.Name(), task.Spec())
	}

	job := s.chain.Then(cron.FuncJob(func() { s.run(task) }))
	if _, err := s.cron.AddJob(task.Spec(), job); err != nil {
		return errors.Wrapf(err, "task %s: schedule failed", task.Name())
	}
	s.tasks = append(s.tasks, task)

	if task.IsStartupRun() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.Run()
		}()
	}
	return nil
}

// Len 已调度的任务数量
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Start 启动调度，收到关闭信号后取消运行中的任务并等待其退出
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
	} else {
		s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))
	}
	s.cron.Start()

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		s.cancel()
		<-s.cron.Stop().Done()
		s.wg.Wait()
		s.logger.Info("tasks stopped")
	})
}

func (s *Scheduler) run(task Task) {
	if s.ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := task.Run(s.ctx)
	fields := []zap.Field{
		zap.String(logger.FieldTask, task.Name()),
		zap.Duration(logger.FieldDuration, time.Since(start)),
	}
	if err != nil {
		s.logger.Error("task failed", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Info("task done", fields...)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
