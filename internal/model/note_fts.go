package model

import (
	"strconv"

	"gorm.io/gorm"
)

// FTS 表版本号，修改此值会触发重建索引
const NoteFTSVersion = 1

const TableNameNoteFTS = "note_fts"

// NoteFTS FTS5 全文搜索虚拟表
// 注意：这不是普通的 GORM 模型，需要手动创建 FTS5 虚拟表
type NoteFTS struct {
	NoteID  string `gorm:"column:note_id" json:"noteId"`
	UID     string `gorm:"column:user_id" json:"userId"`
	Title   string `gorm:"column:title" json:"title"`
	Content string `gorm:"column:content" json:"content"`
}

// TableName 返回表名
func (*NoteFTS) TableName() string {
	return TableNameNoteFTS
}

// NoteFTSMeta FTS 元数据表，用于存储版本信息
type NoteFTSMeta struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value"`
}

func (*NoteFTSMeta) TableName() string {
	return "note_fts_meta"
}

// CreateNoteFTSTable 创建 FTS5 虚拟表，并从 note 表回填索引
func CreateNoteFTSTable(db *gorm.DB) error {
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS note_fts_meta (key TEXT PRIMARY KEY, value TEXT)`).Error; err != nil {
		return err
	}

	var meta NoteFTSMeta
	db.Where("key = ?", "version").Limit(1).Find(&meta)
	version := strconv.Itoa(NoteFTSVersion)

	// 版本不匹配时删除旧表重建
	if meta.Value != "" && meta.Value != version {
		if err := DropNoteFTSTable(db); err != nil {
			return err
		}
	}

	var count int64
	db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", TableNameNoteFTS).Scan(&count)
	if count > 0 {
		return nil
	}

	// tokenize='unicode61 remove_diacritics 2' 支持 Unicode 字符分词
	sql := `
		CREATE VIRTUAL TABLE IF NOT EXISTS note_fts USING fts5(
			note_id UNINDEXED,
			user_id UNINDEXED,
			title,
			content,
			tokenize='unicode61 remove_diacritics 2'
		)
	`
	if err := db.Exec(sql).Error; err != nil {
		return err
	}

	// 回填已有笔记
	if err := db.Exec(`INSERT INTO note_fts (note_id, user_id, title, content) SELECT id, user_id, title, content FROM note`).Error; err != nil {
		return err
	}

	return db.Exec(`INSERT OR REPLACE INTO note_fts_meta (key, value) VALUES ('version', ?)`, version).Error
}

// DropNoteFTSTable 删除 FTS5 表（用于重建索引）
func DropNoteFTSTable(db *gorm.DB) error {
	return db.Exec("DROP TABLE IF EXISTS note_fts").Error
}

// OptimizeNoteFTS merges the FTS5 b-tree segments
// OptimizeNoteFTS 合并 FTS5 索引段
func OptimizeNoteFTS(db *gorm.DB) error {
	return db.Exec("INSERT INTO note_fts(note_fts) VALUES('optimize')").Error
}
