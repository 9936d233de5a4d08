package service

import (
	"context"
	"errors"

	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"gorm.io/gorm"
)

// identityGuard resolves an Identity to the uid of an active user
// identityGuard 将身份解析为启用状态用户的 uid
type identityGuard struct {
	users domain.UserRepository
}

// resolve fails with code.ErrorUserAuthFailed for Anonymous before any storage call,
// and for users that no longer exist or were deactivated
// resolve 匿名身份直接失败，不访问存储；用户不存在或已停用同样失败
func (g identityGuard) resolve(ctx context.Context, id app.Identity) (string, error) {
	uid, err := id.UID()
	if err != nil {
		return "", code.ErrorUserAuthFailed
	}
	user, err := g.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", code.ErrorUserAuthFailed
		}
		return "", mapError(err, nil, nil)
	}
	if !user.IsActive {
		return "", code.ErrorUserAuthFailed
	}
	return uid, nil
}
