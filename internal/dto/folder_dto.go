package dto

import "github.com/haierkeys/fast-note-service/pkg/timex"

// FolderDTO 文件夹数据传输对象
type FolderDTO struct {
	ID          string     `json:"id"`
	ParentID    *string    `json:"parentId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon"`
	Position    int        `json:"position"`
	IsDefault   bool       `json:"isDefault"`
	NoteCount   int64      `json:"noteCount"`
	ChildCount  int64      `json:"childCount"`
	UpdatedAt   timex.Time `json:"updatedAt"`
	CreatedAt   timex.Time `json:"createdAt"`
}

// FolderTreeNode 文件夹树节点
type FolderTreeNode struct {
	FolderDTO
	Children []*FolderTreeNode `json:"children"`
}

// FolderDeleteDTO 删除文件夹结果
type FolderDeleteDTO struct {
	DeletedFolders int64 `json:"deletedFolders"`
	DetachedNotes  int64 `json:"detachedNotes"`
}

// FolderGetRequest 获取文件夹的请求参数
type FolderGetRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// FolderListRequest 获取文件夹列表的请求参数，ParentID 为空返回全部
type FolderListRequest struct {
	ParentID string `json:"parentId" form:"parentId"`
}

// FolderCreateRequest 创建文件夹请求参数
type FolderCreateRequest struct {
	Name        string  `json:"name" form:"name" binding:"required"`
	Description string  `json:"description" form:"description"`
	Color       string  `json:"color" form:"color"`
	Icon        string  `json:"icon" form:"icon"`
	ParentID    *string `json:"parentId" form:"parentId"`
	Position    *int    `json:"position" form:"position"`
}

// FolderUpdateRequest 更新文件夹请求参数，未提供的字段保持不变
type FolderUpdateRequest struct {
	ID          string  `json:"id" form:"id" binding:"required"`
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
	Color       *string `json:"color" form:"color"`
	Icon        *string `json:"icon" form:"icon"`
	ParentID    *string `json:"parentId" form:"parentId"`
	ClearParent bool    `json:"clearParent" form:"clearParent"` // move to root // 移动到根目录
	Position    *int    `json:"position" form:"position"`
}

// FolderMoveRequest 移动文件夹请求参数，ParentID 为空移动到根目录
type FolderMoveRequest struct {
	ID       string  `json:"id" form:"id" binding:"required"`
	ParentID *string `json:"parentId" form:"parentId"`
	Position *int    `json:"position" form:"position"`
}

// FolderDeleteRequest 删除文件夹请求参数
type FolderDeleteRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}
