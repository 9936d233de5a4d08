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

// folderReader reads folders through db; bound readers reuse the db of a running transaction
// folderReader 通过 db 读取文件夹；bound 为 true 时复用事务连接
type folderReader struct {
	db    *gorm.DB
	bound bool
}

func (r *folderReader) conn(ctx context.Context) *gorm.DB {
	if r.bound {
		return r.db
	}
	return r.db.WithContext(ctx)
}

func (r *folderReader) GetByID(ctx context.Context, id, uid string) (*domain.Folder, error) {
	var m model.Folder
	if err := r.conn(ctx).Where("id = ? AND user_id = ?", id, uid).First(&m).Error; err != nil {
		return nil, err
	}
	return folderToDomain(&m), nil
}

func (r *folderReader) GetByName(ctx context.Context, uid string, parentID *string, name string) (*domain.Folder, error) {
	var m model.Folder
	err := r.conn(ctx).
		Where("user_id = ? AND parent_key = ? AND name = ?", uid, parentKey(parentID), name).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return folderToDomain(&m), nil
}

func (r *folderReader) GetDefault(ctx context.Context, uid string) (*domain.Folder, error) {
	var m model.Folder
	if err := r.conn(ctx).Where("user_id = ? AND is_default = ?", uid, true).First(&m).Error; err != nil {
		return nil, err
	}
	return folderToDomain(&m), nil
}

func (r *folderReader) Count(ctx context.Context, uid string) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&model.Folder{}).Where("user_id = ?", uid).Count(&count).Error
	return count, err
}

func (r *folderReader) MaxPosition(ctx context.Context, uid string, parentID *string) (int, error) {
	var maxPos int
	err := r.conn(ctx).Model(&model.Folder{}).
		Select("COALESCE(MAX(position), -1)").
		Where("user_id = ? AND parent_key = ?", uid, parentKey(parentID)).
		Scan(&maxPos).Error
	return maxPos, err
}

type folderRepository struct {
	folderReader
	dao *Dao
}

// NewFolderRepository 创建 FolderRepository 实例
func NewFolderRepository(d *Dao) domain.FolderRepository {
	return &folderRepository{folderReader: folderReader{db: d.db}, dao: d}
}

func (r *folderRepository) List(ctx context.Context, uid string) ([]*domain.Folder, error) {
	var ms []*model.Folder
	err := r.dao.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("position ASC").Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return foldersToDomain(ms), nil
}

func (r *folderRepository) ListChildren(ctx context.Context, uid string, parentID *string) ([]*domain.Folder, error) {
	var ms []*model.Folder
	err := r.dao.db.WithContext(ctx).
		Where("user_id = ? AND parent_key = ?", uid, parentKey(parentID)).
		Order("position ASC").Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return foldersToDomain(ms), nil
}

func (r *folderRepository) CountNotes(ctx context.Context, uid string) (map[string]int64, error) {
	var rows []struct {
		FolderID string
		Total    int64
	}
	err := r.dao.db.WithContext(ctx).Model(&model.Note{}).
		Select("folder_id, COUNT(*) AS total").
		Where("user_id = ? AND folder_id IS NOT NULL", uid).
		Group("folder_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make(map[string]int64, len(rows))
	for _, row := range rows {
		res[row.FolderID] = row.Total
	}
	return res, nil
}

func (r *folderRepository) Create(ctx context.Context, uid string, build func(r domain.FolderReader) (*domain.Folder, error)) (*domain.Folder, error) {
	var result *domain.Folder
	err := r.dao.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		folder, err := build(&folderReader{db: tx, bound: true})
		if err != nil {
			return err
		}
		m := folderToModel(folder)
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.UID = uid
		m.CreatedAt = timex.Now()
		m.UpdatedAt = m.CreatedAt
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		result = folderToDomain(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *folderRepository) Update(ctx context.Context, id, uid string, mutate func(cur *domain.Folder, r domain.FolderReader) error) (*domain.Folder, error) {
	var result *domain.Folder
	err := r.dao.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		reader := &folderReader{db: tx, bound: true}
		cur, err := reader.GetByID(ctx, id, uid)
		if err != nil {
			return err
		}
		if err := mutate(cur, reader); err != nil {
			return err
		}
		m := folderToModel(cur)
		// 主键与归属不可修改
		m.ID, m.UID = id, uid
		m.UpdatedAt = timex.Now()
		if err := tx.Omit("created_at").Save(m).Error; err != nil {
			return err
		}
		result = folderToDomain(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *folderRepository) DeleteTree(ctx context.Context, id, uid string) (*domain.FolderDeleteResult, error) {
	result := &domain.FolderDeleteResult{}
	err := r.dao.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		var root model.Folder
		if err := tx.Where("id = ? AND user_id = ?", id, uid).First(&root).Error; err != nil {
			return err
		}

		var total int64
		if err := tx.Model(&model.Folder{}).Where("user_id = ?", uid).Count(&total).Error; err != nil {
			return err
		}

		// 广度优先收集子孙文件夹，步数以文件夹总数为上限
		ids := []string{root.ID}
		seen := map[string]bool{root.ID: true}
		hadDefault := root.IsDefault
		frontier := []string{root.ID}
		for steps := int64(0); len(frontier) > 0 && steps < total; steps++ {
			var children []model.Folder
			err := tx.Select("id", "is_default").
				Where("user_id = ? AND parent_id IN ?", uid, frontier).
				Find(&children).Error
			if err != nil {
				return err
			}
			frontier = frontier[:0:0]
			for _, c := range children {
				if seen[c.ID] {
					continue
				}
				seen[c.ID] = true
				hadDefault = hadDefault || c.IsDefault
				ids = append(ids, c.ID)
				frontier = append(frontier, c.ID)
			}
		}

		res := tx.Model(&model.Note{}).
			Where("user_id = ? AND folder_id IN ?", uid, ids).
			UpdateColumn("folder_id", nil)
		if res.Error != nil {
			return res.Error
		}
		result.DetachedNotes = res.RowsAffected

		// 由深到浅逐个删除，避免自引用外键冲突
		for i := len(ids) - 1; i >= 0; i-- {
			if err := tx.Where("id = ? AND user_id = ?", ids[i], uid).Delete(&model.Folder{}).Error; err != nil {
				return err
			}
		}
		result.DeletedFolderIDs = ids

		if !hadDefault {
			return nil
		}
		var next model.Folder
		err := tx.Where("user_id = ? AND parent_id IS NULL", uid).
			Order("position ASC").Order("created_at ASC").
			Limit(1).Find(&next).Error
		if err != nil {
			return err
		}
		if next.ID == "" {
			return nil
		}
		err = tx.Model(&model.Folder{}).
			Where("id = ? AND user_id = ?", next.ID, uid).
			UpdateColumns(map[string]interface{}{"is_default": true, "updated_at": timex.Now()}).Error
		if err != nil {
			return err
		}
		result.PromotedDefaultID = next.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}

func folderToDomain(m *model.Folder) *domain.Folder {
	if m == nil {
		return nil
	}
	return &domain.Folder{
		ID:          m.ID,
		UID:         m.UID,
		ParentID:    m.ParentID,
		Name:        m.Name,
		Description: m.Description,
		Color:       m.Color,
		Icon:        m.Icon,
		Position:    m.Position,
		IsDefault:   m.IsDefault,
		CreatedAt:   time.Time(m.CreatedAt),
		UpdatedAt:   time.Time(m.UpdatedAt),
	}
}

func foldersToDomain(ms []*model.Folder) []*domain.Folder {
	res := make([]*domain.Folder, 0, len(ms))
	for _, m := range ms {
		res = append(res, folderToDomain(m))
	}
	return res
}

func folderToModel(f *domain.Folder) *model.Folder {
	return &model.Folder{
		ID:          f.ID,
		UID:         f.UID,
		ParentID:    f.ParentID,
		ParentKey:   parentKey(f.ParentID),
		Name:        f.Name,
		Description: f.Description,
		Color:       f.Color,
		Icon:        f.Icon,
		Position:    f.Position,
		IsDefault:   f.IsDefault,
		CreatedAt:   timex.Time(f.CreatedAt),
		UpdatedAt:   timex.Time(f.UpdatedAt),
	}
}
