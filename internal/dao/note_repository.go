package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/internal/model"
	"github.com/haierkeys/fast-note-service/pkg/timex"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// noteReader 通过 db 读取笔记；bound 为 true 时复用事务连接
type noteReader struct {
	db    *gorm.DB
	bound bool
}

func (r *noteReader) conn(ctx context.Context) *gorm.DB {
	if r.bound {
		return r.db
	}
	return r.db.WithContext(ctx)
}

func (r *noteReader) GetByID(ctx context.Context, id, uid string) (*domain.Note, error) {
	var m model.Note
	if err := r.conn(ctx).Where("id = ? AND user_id = ?", id, uid).First(&m).Error; err != nil {
		return nil, err
	}
	return noteToDomain(&m), nil
}

func (r *noteReader) FolderExists(ctx context.Context, folderID, uid string) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&model.Folder{}).
		Where("id = ? AND user_id = ?", folderID, uid).
		Count(&count).Error
	return count > 0, err
}

type noteRepository struct {
	noteReader
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(d *Dao) domain.NoteRepository {
	return &noteRepository{noteReader: noteReader{db: d.db}, dao: d}
}

// List 置顶优先，其次按更新时间倒序
func (r *noteRepository) List(ctx context.Context, uid string, filter domain.NoteListFilter) ([]*domain.Note, int64, error) {
	q := r.dao.db.WithContext(ctx).Model(&model.Note{}).Where("user_id = ?", uid)
	switch {
	case filter.FolderID != nil:
		q = q.Where("folder_id = ?", *filter.FolderID)
	case filter.Unfiled:
		q = q.Where("folder_id IS NULL")
	}
	if filter.PinnedOnly {
		q = q.Where("is_pinned = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []*model.Note
	q = q.Order("is_pinned DESC").Order("updated_at DESC").Order("id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return notesToDomain(ms), total, nil
}

func (r *noteRepository) Create(ctx context.Context, uid string, build func(r domain.NoteReader) (*domain.Note, error)) (*domain.Note, error) {
	var result *domain.Note
	err := r.dao.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		note, err := build(&noteReader{db: tx, bound: true})
		if err != nil {
			return err
		}
		m := noteToModel(note)
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.UID = uid
		m.CreatedAt = timex.Now()
		m.UpdatedAt = m.CreatedAt
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := r.syncFTS(tx, m); err != nil {
			return err
		}
		result = noteToDomain(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *noteRepository) Update(ctx context.Context, id, uid string, mutate func(cur *domain.Note, r domain.NoteReader) error) (*domain.Note, error) {
	var result *domain.Note
	err := r.dao.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		reader := &noteReader{db: tx, bound: true}
		cur, err := reader.GetByID(ctx, id, uid)
		if err != nil {
			return err
		}
		if err := mutate(cur, reader); err != nil {
			return err
		}
		m := noteToModel(cur)
		m.ID, m.UID = id, uid
		m.UpdatedAt = timex.Now()
		// 浏览数只由 IncrementViews 修改
		if err := tx.Omit("created_at", "view_count").Save(m).Error; err != nil {
			return err
		}
		if err := r.syncFTS(tx, m); err != nil {
			return err
		}
		result = noteToDomain(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *noteRepository) Delete(ctx context.Context, id, uid string) error {
	return r.dao.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, uid).Delete(&model.Note{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if r.dao.Dialect() == DialectSQLite {
			return tx.Exec("DELETE FROM note_fts WHERE note_id = ?", id).Error
		}
		return nil
	})
}

func (r *noteRepository) IncrementViews(ctx context.Context, id, uid string) (*domain.Note, error) {
	var result *domain.Note
	err := r.dao.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		res := tx.Model(&model.Note{}).
			Where("id = ? AND user_id = ?", id, uid).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var m model.Note
		if err := tx.Where("id = ? AND user_id = ?", id, uid).First(&m).Error; err != nil {
			return err
		}
		result = noteToDomain(&m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *noteRepository) OptimizeIndex(ctx context.Context) error {
	if r.dao.Dialect() != DialectSQLite {
		return nil
	}
	return model.OptimizeNoteFTS(r.dao.db.WithContext(ctx))
}

// syncFTS 先删除旧记录再插入新记录
func (r *noteRepository) syncFTS(tx *gorm.DB, m *model.Note) error {
	if r.dao.Dialect() != DialectSQLite {
		return nil
	}
	if err := tx.Exec("DELETE FROM note_fts WHERE note_id = ?", m.ID).Error; err != nil {
		return err
	}
	return tx.Exec("INSERT INTO note_fts (note_id, user_id, title, content) VALUES (?, ?, ?, ?)",
		m.ID, m.UID, m.Title, m.Content).Error
}

func noteToDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	n := &domain.Note{
		ID:        m.ID,
		UID:       m.UID,
		FolderID:  m.FolderID,
		Title:     m.Title,
		Content:   m.Content,
		IsPinned:  m.IsPinned,
		ViewCount: m.ViewCount,
		WordCount: m.WordCount,
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
	if m.PinnedAt != nil && !m.PinnedAt.IsZero() {
		t := m.PinnedAt.Time()
		n.PinnedAt = &t
	}
	return n
}

func notesToDomain(ms []*model.Note) []*domain.Note {
	res := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		res = append(res, noteToDomain(m))
	}
	return res
}

func noteToModel(n *domain.Note) *model.Note {
	return &model.Note{
		ID:        n.ID,
		UID:       n.UID,
		FolderID:  n.FolderID,
		Title:     n.Title,
		Content:   n.Content,
		IsPinned:  n.IsPinned,
		PinnedAt:  timex.Ptr(n.PinnedAt),
		ViewCount: n.ViewCount,
		WordCount: n.WordCount,
		CreatedAt: timex.Time(n.CreatedAt),
		UpdatedAt: timex.Time(n.UpdatedAt),
	}
}
