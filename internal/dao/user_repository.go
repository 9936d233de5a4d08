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

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:         m.UID,
		Email:       m.Email,
		Password:    m.Password,
		DisplayName: m.DisplayName,
		IsActive:    m.IsActive,
		CreatedAt:   time.Time(m.CreatedAt),
		UpdatedAt:   time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *userRepository) toModel(u *domain.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		UID:         u.UID,
		Email:       u.Email,
		Password:    u.Password,
		DisplayName: u.DisplayName,
		IsActive:    u.IsActive,
		CreatedAt:   timex.Time(u.CreatedAt),
		UpdatedAt:   timex.Time(u.UpdatedAt),
	}
}

// GetByUID 根据UID获取用户
func (r *userRepository) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	var m model.User
	if err := r.dao.db.WithContext(ctx).Where("uid = ?", uid).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m model.User
	if err := r.dao.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建用户，UID 为空时自动生成
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := r.toModel(user)
	if m.UID == "" {
		m.UID = uuid.NewString()
	}
	m.CreatedAt = timex.Now()
	m.UpdatedAt = m.CreatedAt

	err := r.dao.ExecuteWrite(ctx, m.UID, func(tx *gorm.DB) error {
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdatePassword 更新用户密码
func (r *userRepository) UpdatePassword(ctx context.Context, uid, password string) error {
	return r.update(ctx, uid, map[string]interface{}{"password": password})
}

// SetActive 启用或停用用户
func (r *userRepository) SetActive(ctx context.Context, uid string, active bool) error {
	return r.update(ctx, uid, map[string]interface{}{"is_active": active})
}

func (r *userRepository) update(ctx context.Context, uid string, values map[string]interface{}) error {
	values["updated_at"] = timex.Now()
	return r.dao.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).Where("uid = ?", uid).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
