package task

import (
	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器，负责根据配置创建并注册所有任务
type Manager struct {
	scheduler *Scheduler
	app       *app.App
	logger    *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(appContainer *app.App, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		scheduler: NewScheduler(appContainer.Logger(), sc),
		app:       appContainer,
		logger:    appContainer.Logger(),
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	cfg := m.app.Config().Task
	tasks := []Task{
		NewFTSOptimizeTask(m.app.NoteRepo, cfg.FTSOptimizeCron),
		NewWriteQueueStatsTask(m.app.Dao.WriteQueue(), m.logger, cfg.WriteQueueStatsCron),
	}
	for _, t := range tasks {
		if err := m.scheduler.AddTask(t); err != nil {
			m.logger.Warn("failed to register task", zap.String("task", t.Name()), zap.Error(err))
			return err
		}
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
