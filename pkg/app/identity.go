package app

import (
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// IdentityKey gin context key holding the request Identity
// IdentityKey gin 上下文中保存请求身份的键
const IdentityKey = "identity"

// Identity is the per-request caller, either Authenticated(uid) or Anonymous.
// It is built once by the auth middleware and passed explicitly into
// every service call.
// Identity 表示单次请求的调用者，Authenticated(uid) 或 Anonymous
type Identity struct {
	uid string
}

// Anonymous 匿名身份
func Anonymous() Identity {
	return Identity{}
}

// Authenticated 已认证身份，uid 为空时等同于 Anonymous
func Authenticated(uid string) Identity {
	return Identity{uid: uid}
}

// IsAuthenticated 是否已认证
func (i Identity) IsAuthenticated() bool {
	return i.uid != ""
}

// UID returns the subject, or code.ErrorUserAuthFailed for Anonymous
// UID 返回用户 ID，匿名身份返回 code.ErrorUserAuthFailed
func (i Identity) UID() (string, error) {
	if i.uid == "" {
		return "", code.ErrorUserAuthFailed
	}
	return i.uid, nil
}

func (i Identity) String() string {
	if i.uid == "" {
		return "Anonymous"
	}
	return "Authenticated(" + i.uid + ")"
}

// SetIdentity 将身份写入 gin 上下文
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(IdentityKey, id)
}

// IdentityFrom reads the Identity set by the auth middleware, Anonymous when absent
// IdentityFrom 读取认证中间件写入的身份，不存在时为匿名
func IdentityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Anonymous()
}

// GetUID extracts the user ID from the request context, empty for anonymous requests
// GetUID 从请求上下文中获取用户 ID，匿名请求返回空字符串
func GetUID(c *gin.Context) string {
	return IdentityFrom(c).uid
}
