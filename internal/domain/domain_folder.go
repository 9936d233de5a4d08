package domain

import "time"

// FolderNameMaxLength 文件夹名称最大字符数
const FolderNameMaxLength = 100

// DefaultFolderName 自动创建的默认文件夹名称
const DefaultFolderName = "Default"

// Folder 文件夹领域模型
type Folder struct {
	ID          string
	UID         string
	ParentID    *string // nil for root folders
	Name        string
	Description string
	Color       string
	Icon        string
	Position    int
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParentKey returns the parent id, "" for root folders
// ParentKey 返回父文件夹 ID，根文件夹为 ""
func (f *Folder) ParentKey() string {
	if f.ParentID == nil {
		return ""
	}
	return *f.ParentID
}

// IsRoot 是否为根文件夹
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderDeleteResult 删除文件夹的结果
type FolderDeleteResult struct {
	DeletedFolderIDs []string
	DetachedNotes    int64
	// PromotedDefaultID is the folder that became default, empty when none
	// PromotedDefaultID 被提升为默认的文件夹 ID，没有则为空
	PromotedDefaultID string
}
