package domain

import "time"

// NoteTitleMaxLength 笔记标题最大字符数
const NoteTitleMaxLength = 200

// Note 笔记领域模型
type Note struct {
	ID        string
	UID       string
	FolderID  *string
	Title     string
	Content   string
	IsPinned  bool
	PinnedAt  *time.Time // set exactly when IsPinned
	ViewCount int64
	WordCount int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteListFilter 笔记列表过滤条件
type NoteListFilter struct {
	FolderID   *string
	Unfiled    bool // only notes without folder
	PinnedOnly bool
	Limit      int
	Offset     int
}
