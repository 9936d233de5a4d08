package task

import (
	"context"

	"github.com/haierkeys/fast-note-service/pkg/writequeue"

	"go.uber.org/zap"
)

// WriteQueueStatsTask 定期记录写队列指标
type WriteQueueStatsTask struct {
	queue  *writequeue.Manager
	logger *zap.Logger
	spec   string
}

// NewWriteQueueStatsTask 创建写队列指标任务
func NewWriteQueueStatsTask(queue *writequeue.Manager, logger *zap.Logger, spec string) *WriteQueueStatsTask {
	return &WriteQueueStatsTask{queue: queue, logger: logger, spec: spec}
}

func (t *WriteQueueStatsTask) Name() string {
	return "WriteQueueStats"
}

func (t *WriteQueueStatsTask) Spec() string {
	return t.spec
}

func (t *WriteQueueStatsTask) IsStartupRun() bool {
	return false
}

func (t *WriteQueueStatsTask) Run(ctx context.Context) error {
	m := t.queue.GetMetrics()
	t.logger.Info("write queue stats",
		zap.Int("activeQueues", m.ActiveQueues),
		zap.Int("queueCapacity", m.QueueCapacity),
		zap.Int64("executed", m.Executed),
		zap.Int64("rejected", m.Rejected),
		zap.Bool("closed", m.IsClosed))
	return nil
}
