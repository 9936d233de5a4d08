package dto

import "github.com/haierkeys/fast-note-service/pkg/timex"

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID        string      `json:"id"`
	FolderID  *string     `json:"folderId"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	IsPinned  bool        `json:"isPinned"`
	PinnedAt  *timex.Time `json:"pinnedAt"`
	ViewCount int64       `json:"viewCount"`
	WordCount int64       `json:"wordCount"`
	UpdatedAt timex.Time  `json:"updatedAt"`
	CreatedAt timex.Time  `json:"createdAt"`
}

// NoteGetRequest Request parameters for viewing a note
// NoteGetRequest 查看笔记请求参数
type NoteGetRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// NoteCreateRequest Request parameters for creating a note
// NoteCreateRequest 创建笔记请求参数；Title 为空时根据内容生成
type NoteCreateRequest struct {
	Content  string  `json:"content" form:"content"`
	Title    *string `json:"title" form:"title"`
	FolderID *string `json:"folderId" form:"folderId"`
	IsPinned bool    `json:"isPinned" form:"isPinned"`
}

// NoteUpdateRequest 更新笔记请求参数，未提供的字段保持不变
type NoteUpdateRequest struct {
	ID      string  `json:"id" form:"id" binding:"required"`
	Content *string `json:"content" form:"content"`
	Title   *string `json:"title" form:"title"`
}

// NoteMoveRequest 移动笔记请求参数，FolderID 为空表示移出文件夹
type NoteMoveRequest struct {
	ID       string  `json:"id" form:"id" binding:"required"`
	FolderID *string `json:"folderId" form:"folderId"`
}

// NotePinRequest 切换置顶请求参数
type NotePinRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// NoteDeleteRequest 删除笔记请求参数
type NoteDeleteRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// NoteListRequest 笔记列表请求参数
type NoteListRequest struct {
	FolderID   string `json:"folderId" form:"folderId"`
	Unfiled    bool   `json:"unfiled" form:"unfiled"`
	PinnedOnly bool   `json:"pinnedOnly" form:"pinnedOnly"`
}

// NoteSearchRequest 搜索请求参数
type NoteSearchRequest struct {
	Query string `json:"q" form:"q"`
}
