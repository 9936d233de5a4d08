package domain

import "context"

// UserRepository 用户仓储接口
type UserRepository interface {
	GetByUID(ctx context.Context, uid string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	UpdatePassword(ctx context.Context, uid, password string) error
	SetActive(ctx context.Context, uid string, active bool) error
}

// FolderReader is the read side of FolderRepository; inside Create and
// Update it reads through the running transaction.
// FolderReader 文件夹只读接口；在 Create/Update 回调中通过当前事务读取
type FolderReader interface {
	GetByID(ctx context.Context, id, uid string) (*Folder, error)
	// GetByName 查找同级同名文件夹，parentID 为 nil 表示根目录
	GetByName(ctx context.Context, uid string, parentID *string, name string) (*Folder, error)
	GetDefault(ctx context.Context, uid string) (*Folder, error)
	Count(ctx context.Context, uid string) (int64, error)
	// MaxPosition 返回同级最大 position，无同级时为 -1
	MaxPosition(ctx context.Context, uid string, parentID *string) (int, error)
}

// FolderRepository 文件夹仓储接口
type FolderRepository interface {
	FolderReader

	// List returns all folders of uid ordered by position then created_at
	// List 返回用户所有文件夹，按 position、created_at 排序
	List(ctx context.Context, uid string) ([]*Folder, error)
	// ListChildren 返回直接子文件夹，parentID 为 nil 表示根目录
	ListChildren(ctx context.Context, uid string, parentID *string) ([]*Folder, error)
	// CountNotes returns note counts keyed by folder id
	// CountNotes 返回按文件夹 ID 统计的笔记数量
	CountNotes(ctx context.Context, uid string) (map[string]int64, error)

	// Create calls build inside one write transaction and inserts the folder it returns
	// Create 在同一写事务中调用 build 并插入其返回的文件夹
	Create(ctx context.Context, uid string, build func(r FolderReader) (*Folder, error)) (*Folder, error)
	// Update loads folder id inside one write transaction, lets mutate change it and saves it
	// Update 在同一写事务中加载文件夹，交由 mutate 修改后保存
	Update(ctx context.Context, id, uid string, mutate func(cur *Folder, r FolderReader) error) (*Folder, error)
	// DeleteTree removes the folder and its descendants and detaches their notes in one transaction
	// DeleteTree 在同一事务中删除文件夹及其所有子孙文件夹，并解除相关笔记的关联
	DeleteTree(ctx context.Context, id, uid string) (*FolderDeleteResult, error)
}

// NoteReader is the read side of NoteRepository used inside write transactions
// NoteReader 笔记写事务中使用的只读接口
type NoteReader interface {
	GetByID(ctx context.Context, id, uid string) (*Note, error)
	// FolderExists 判断文件夹是否存在且属于 uid
	FolderExists(ctx context.Context, folderID, uid string) (bool, error)
}

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	NoteReader

	List(ctx context.Context, uid string, filter NoteListFilter) ([]*Note, int64, error)
	// Search ranks the caller's notes with the storage engine's text search
	// Search 使用存储引擎的全文搜索对调用者的笔记排序
	Search(ctx context.Context, uid string, query string, limit, offset int) ([]*Note, int64, error)

	// Create calls build inside one write transaction and inserts the note it returns
	// Create 在同一写事务中调用 build 并插入其返回的笔记
	Create(ctx context.Context, uid string, build func(r NoteReader) (*Note, error)) (*Note, error)
	// Update loads note id inside one write transaction, lets mutate change it and saves it
	// Update 在同一写事务中加载笔记，交由 mutate 修改后保存
	Update(ctx context.Context, id, uid string, mutate func(cur *Note, r NoteReader) error) (*Note, error)
	Delete(ctx context.Context, id, uid string) error
	// IncrementViews atomically adds one view and returns the updated note
	// IncrementViews 原子地增加一次浏览并返回更新后的笔记
	IncrementViews(ctx context.Context, id, uid string) (*Note, error)
	// OptimizeIndex compacts the full-text index where the engine supports it
	// OptimizeIndex 在引擎支持时整理全文索引
	OptimizeIndex(ctx context.Context) error
}
