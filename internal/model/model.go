// Package model 定义数据模型
package model

import (
	"github.com/haierkeys/fast-note-service/pkg/timex"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const TableNameUser = "user"

// User mapped from table <user>
type User struct {
	UID         string     `gorm:"column:uid;type:varchar(36);primaryKey" json:"uid" form:"uid"`
	Email       string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_user_email" json:"email" form:"email"`
	Password    string     `gorm:"column:password;type:varchar(255);not null" json:"-" form:"password"`
	DisplayName string     `gorm:"column:display_name;type:varchar(100);not null" json:"displayName" form:"displayName"`
	IsActive    bool       `gorm:"column:is_active;not null" json:"isActive" form:"isActive"`
	CreatedAt   timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`

	// 外键定义在 folder.user_id 与 note.user_id 上
	Folders []Folder `gorm:"foreignKey:UID;references:UID;constraint:OnDelete:CASCADE" json:"-"`
	Notes   []Note   `gorm:"foreignKey:UID;references:UID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}

const TableNameFolder = "folder"

// Folder mapped from table <folder>
//
// ParentKey mirrors ParentID with "" for root folders so that the sibling
// unique index also covers the root level (NULLs never collide in a unique index).
// ParentKey 与 ParentID 同步，根文件夹为 ""，使同级唯一索引同样约束根目录
type Folder struct {
	ID          string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id" form:"id"`
	UID         string     `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_folder_sibling_name,priority:1;index:idx_folder_user" json:"userId" form:"userId"`
	ParentID    *string    `gorm:"column:parent_id;type:varchar(36);index:idx_folder_parent" json:"parentId" form:"parentId"`
	ParentKey   string     `gorm:"column:parent_key;type:varchar(36);not null;default:'';uniqueIndex:idx_folder_sibling_name,priority:2" json:"-" form:"-"`
	Name        string     `gorm:"column:name;type:varchar(100);not null;uniqueIndex:idx_folder_sibling_name,priority:3" json:"name" form:"name"`
	Description string     `gorm:"column:description;type:text" json:"description" form:"description"`
	Color       string     `gorm:"column:color;type:varchar(32)" json:"color" form:"color"`
	Icon        string     `gorm:"column:icon;type:varchar(64)" json:"icon" form:"icon"`
	Position    int        `gorm:"column:position;not null;default:0" json:"position" form:"position"`
	IsDefault   bool       `gorm:"column:is_default;not null;default:false" json:"isDefault" form:"isDefault"`
	CreatedAt   timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`

	Parent *Folder `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName Folder's table name
func (*Folder) TableName() string {
	return TableNameFolder
}

// BeforeSave keeps ParentKey in step with ParentID
// BeforeSave 保持 ParentKey 与 ParentID 一致
func (f *Folder) BeforeSave(*gorm.DB) error {
	if f.ParentID == nil {
		f.ParentKey = ""
	} else {
		f.ParentKey = *f.ParentID
	}
	return nil
}

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID        string      `gorm:"column:id;type:varchar(36);primaryKey" json:"id" form:"id"`
	UID       string      `gorm:"column:user_id;type:varchar(36);not null;index:idx_note_user_pinned,priority:1" json:"userId" form:"userId"`
	FolderID  *string     `gorm:"column:folder_id;type:varchar(36);index:idx_note_folder" json:"folderId" form:"folderId"`
	Title     string      `gorm:"column:title;type:varchar(200);not null" json:"title" form:"title"`
	Content   string      `gorm:"column:content;type:text;not null" json:"content" form:"content"`
	IsPinned  bool        `gorm:"column:is_pinned;not null;default:false;index:idx_note_user_pinned,priority:2" json:"isPinned" form:"isPinned"`
	PinnedAt  *timex.Time `gorm:"column:pinned_at" json:"pinnedAt" form:"pinnedAt"`
	ViewCount int64       `gorm:"column:view_count;not null;default:0" json:"viewCount" form:"viewCount"`
	WordCount int64       `gorm:"column:word_count;not null;default:0" json:"wordCount" form:"wordCount"`
	CreatedAt timex.Time  `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time  `gorm:"column:updated_at;autoUpdateTime:false;index:idx_note_user_pinned,priority:3" json:"updatedAt" form:"updatedAt"`

	Folder *Folder `gorm:"foreignKey:FolderID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}

// AutoMigrate creates or updates every table, plus the sqlite full-text index
// AutoMigrate 创建或更新所有表，sqlite 下同时创建全文索引
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Folder{}, &Note{}); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	if db.Dialector.Name() == "sqlite" {
		if err := CreateNoteFTSTable(db); err != nil {
			return errors.Wrap(err, "create note_fts")
		}
	}
	return nil
}
