package task

import (
	"context"

	"github.com/haierkeys/fast-note-service/internal/domain"
)

// FTSOptimizeTask merges the full-text index segments
// FTSOptimizeTask 合并全文索引分段
type FTSOptimizeTask struct {
	notes domain.NoteRepository
	spec  string
}

// NewFTSOptimizeTask 创建全文索引优化任务
func NewFTSOptimizeTask(notes domain.NoteRepository, spec string) *FTSOptimizeTask {
	return &FTSOptimizeTask{notes: notes, spec: spec}
}

func (t *FTSOptimizeTask) Name() string {
	return "FTSOptimize"
}

func (t *FTSOptimizeTask) Spec() string {
	return t.spec
}

func (t *FTSOptimizeTask) IsStartupRun() bool {
	return false
}

// Run 执行索引优化，非 SQLite 数据库为空操作
func (t *FTSOptimizeTask) Run(ctx context.Context) error {
	return t.notes.OptimizeIndex(ctx)
}
