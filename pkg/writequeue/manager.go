// Package writequeue provides Per-User Write Queue implementation
// Package writequeue 提供 Per-User Write Queue 实现
// Used to serialize SQLite write operations for the same user to solve "database is locked" issue
// 用于串行化同一用户的 SQLite 写操作，解决 "database is locked" 问题
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Error definitions
// 错误定义
var (
	// ErrWriteQueueFull returned when user write queue is full
	// ErrWriteQueueFull 当用户写队列已满时返回
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed returned when write queue manager is closed
	// ErrWriteQueueClosed 当写队列管理器已关闭时返回
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout returned when write operation timeout
	// ErrWriteTimeout 当写操作超时时返回
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity per-user queue capacity, default 100
	// QueueCapacity 每用户队列容量，默认 100
	QueueCapacity int
	// WriteTimeout upper bound for waiting plus running one operation, default 30 seconds
	// WriteTimeout 单个写操作排队加执行的最长时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout idle cleanup timeout, default 10 minutes
	// IdleTimeout 空闲清理超时时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

// op states
const (
	opPending int32 = iota
	opRunning
	opAbandoned
)

// writeOp write operation
// writeOp 写操作
type writeOp struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
	state  atomic.Int32
}

// userWriteQueue single user write queue
// userWriteQueue 单用户写队列
type userWriteQueue struct {
	uid      string
	ch       chan *writeOp
	lastUsed atomic.Int64
	closed   atomic.Bool
	workerWg sync.WaitGroup

	// Used to notify worker to stop
	// 用于通知 worker 停止
	stopCh   chan struct{}
	stopOnce sync.Once
}

func (q *userWriteQueue) stop() {
	q.stopOnce.Do(func() {
		q.closed.Store(true)
		close(q.stopCh)
	})
}

// Manager manages write queues for all users
// Manager 管理所有用户的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	queues sync.Map // map[string]*userWriteQueue

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	// Cleanup goroutine control
	// 清理 goroutine 控制
	cleanupWg   sync.WaitGroup
	cleanupDone chan struct{}

	executed atomic.Int64
	rejected atomic.Int64
}

// New creates write queue manager
// New 创建写队列管理器
// cfg: configuration, if nil use default configuration
// cfg: 配置，如果为 nil 则使用默认配置
// logger: zap logger, if nil use nop logger
// logger: zap 日志器，如果为 nil 则使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Manager {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}

	// Apply default values
	// 应用默认值
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 100
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:      *cfg,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}

	// Start idle queue cleanup goroutine
	// 启动空闲队列清理 goroutine
	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", cfg.QueueCapacity),
		zap.Duration("writeTimeout", cfg.WriteTimeout),
		zap.Duration("idleTimeout", cfg.IdleTimeout))

	return m
}

// Execute runs fn on uid's queue. Operations of one user run one at a time in
// FIFO order. fn receives a context bounded by WriteTimeout.
//
// An operation that has not started when the deadline passes is dropped and
// never runs, so ErrWriteTimeout means nothing was written. An operation that
// already started is waited for and its own result is returned.
//
// Execute 执行写操作
// 写操作会被串行化执行，同一用户的写操作按 FIFO 顺序处理
// 超时前尚未开始的操作会被丢弃且不会再执行；已开始的操作会等待其返回结果
func (m *Manager) Execute(ctx context.Context, uid string, fn func(ctx context.Context) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrWriteQueueClosed
	}
	m.mu.RUnlock()

	// Get or create user queue
	// 获取或创建用户队列
	queue := m.getOrCreateQueue(uid)
	if queue == nil {
		return ErrWriteQueueClosed
	}

	opCtx, cancel := context.WithTimeout(ctx, m.config.WriteTimeout)
	defer cancel()

	op := &writeOp{
		ctx:    opCtx,
		fn:     fn,
		result: make(chan error, 1),
	}

	// Try submitting to queue
	// 尝试提交到队列
	select {
	case queue.ch <- op:
	default:
		m.rejected.Add(1)
		return ErrWriteQueueFull
	}

	select {
	case err := <-op.result:
		return err
	case <-opCtx.Done():
	case <-m.ctx.Done():
	}

	// Not started yet: drop it
	// 尚未开始：直接丢弃
	if op.state.CompareAndSwap(opPending, opAbandoned) {
		m.rejected.Add(1)
		if m.ctx.Err() != nil && opCtx.Err() == nil {
			return ErrWriteQueueClosed
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrWriteTimeout
	}

	// Already running: its context is done, wait for it to finish
	// 已在执行：其 context 已结束，等待执行完成
	return <-op.result
}

// getOrCreateQueue gets or creates user write queue (lazy loading)
// getOrCreateQueue 获取或创建用户写队列（懒加载）
func (m *Manager) getOrCreateQueue(uid string) *userWriteQueue {
	// Try to get existing queue first
	// 先尝试获取已存在的队列
	if v, ok := m.queues.Load(uid); ok {
		queue := v.(*userWriteQueue)
		if !queue.closed.Load() {
			queue.lastUsed.Store(time.Now().UnixNano())
			return queue
		}
	}

	// Check if already closed
	// 检查是否已关闭
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil
	}

	queue := &userWriteQueue{
		uid:    uid,
		ch:     make(chan *writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
	}
	queue.lastUsed.Store(time.Now().UnixNano())

	// Use LoadOrStore to ensure only one queue is created
	// 使用 LoadOrStore 确保只有一个队列被创建
	actual, loaded := m.queues.LoadOrStore(uid, queue)
	if loaded {
		existingQueue := actual.(*userWriteQueue)
		if !existingQueue.closed.Load() {
			existingQueue.lastUsed.Store(time.Now().UnixNano())
			return existingQueue
		}
		// Existing queue is closed, need to replace
		// 已存在的队列已关闭，需要替换
		m.queues.Store(uid, queue)
	}

	// Start worker goroutine (lazy loading)
	// 启动 worker goroutine（懒加载）
	queue.workerWg.Add(1)
	go m.worker(queue)

	m.logger.Debug("created write queue for user",
		zap.String("uid", uid),
		zap.Int("capacity", m.config.QueueCapacity))

	return queue
}

// worker worker goroutine handling single user write queue
// worker 处理单用户写队列的 worker goroutine
func (m *Manager) worker(queue *userWriteQueue) {
	defer queue.workerWg.Done()
	defer func() {
		queue.closed.Store(true)
		m.logger.Debug("write queue worker stopped", zap.String("uid", queue.uid))
	}()

	for {
		select {
		case <-m.ctx.Done():
			m.drainQueue(queue)
			return
		case <-queue.stopCh:
			m.drainQueue(queue)
			return
		case op := <-queue.ch:
			m.executeOp(queue, op)
		}
	}
}

// executeOp executes single write operation
// executeOp 执行单个写操作
func (m *Manager) executeOp(queue *userWriteQueue, op *writeOp) {
	queue.lastUsed.Store(time.Now().UnixNano())

	if !op.state.CompareAndSwap(opPending, opRunning) {
		// Abandoned by the caller
		// 调用方已放弃
		return
	}

	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("write operation panic",
					zap.String("uid", queue.uid),
					zap.Any("panic", r),
					zap.Stack("stack"))
				err = errors.New("write operation panic")
			}
		}()
		err = op.fn(op.ctx)
	}()

	m.executed.Add(1)
	op.result <- err
}

// drainQueue drains remaining operations in queue
// drainQueue 排空队列中的剩余操作
func (m *Manager) drainQueue(queue *userWriteQueue) {
	for {
		select {
		case op := <-queue.ch:
			m.executeOp(queue, op)
		default:
			return
		}
	}
}

// cleanupIdleQueues regularly cleans up idle queues
// cleanupIdleQueues 定期清理空闲队列
func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.cleanupDone:
			return
		case <-ticker.C:
			m.doCleanup()
		}
	}
}

// doCleanup performs one cleanup
// doCleanup 执行一次清理
func (m *Manager) doCleanup() {
	now := time.Now().UnixNano()
	idleThreshold := m.config.IdleTimeout.Nanoseconds()

	m.queues.Range(func(key, value interface{}) bool {
		uid := key.(string)
		queue := value.(*userWriteQueue)

		lastUsed := queue.lastUsed.Load()
		if now-lastUsed > idleThreshold && len(queue.ch) == 0 && !queue.closed.Load() {
			m.logger.Debug("cleaning up idle write queue",
				zap.String("uid", uid),
				zap.Duration("idleTime", time.Duration(now-lastUsed)))

			queue.stop()
			m.queues.CompareAndDelete(uid, queue)
		}
		return true
	})
}

// Shutdown closes write queue manager, waits for all operations to complete
// ctx is used to control shutdown timeout
// Shutdown 关闭写队列管理器，等待所有操作完成
// ctx 用于控制关闭超时
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down")

	close(m.cleanupDone)

	done := make(chan struct{})
	go func() {
		m.queues.Range(func(key, value interface{}) bool {
			value.(*userWriteQueue).stop()
			return true
		})
		m.queues.Range(func(key, value interface{}) bool {
			value.(*userWriteQueue).workerWg.Wait()
			return true
		})
		m.cleanupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		m.cancel()
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		m.cancel()
		return ctx.Err()
	}
}

// QueueCount returns current active queue count
// QueueCount 返回当前活跃队列数量
func (m *Manager) QueueCount() int {
	count := 0
	m.queues.Range(func(key, value interface{}) bool {
		if !value.(*userWriteQueue).closed.Load() {
			count++
		}
		return true
	})
	return count
}

// QueuedCount returns number of operations waiting in specific user queue
// QueuedCount 返回指定用户队列中等待的操作数
func (m *Manager) QueuedCount(uid string) int {
	if v, ok := m.queues.Load(uid); ok {
		return len(v.(*userWriteQueue).ch)
	}
	return 0
}

// IsClosed returns if manager is closed
// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Metrics write queue manager metrics
// Metrics 写队列管理器指标
type Metrics struct {
	QueueCapacity int
	ActiveQueues  int
	Executed      int64
	Rejected      int64
	IsClosed      bool
}

// GetMetrics gets current metrics
// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveQueues:  m.QueueCount(),
		Executed:      m.executed.Load(),
		Rejected:      m.rejected.Load(),
		IsClosed:      m.IsClosed(),
	}
}
