package middleware

import (
	"strings"

	"github.com/haierkeys/fast-note-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// UserAuthToken resolves the request credential into an Identity and stores it on the context.
// It never aborts: a missing or bad token yields Anonymous and the service layer rejects it.
// UserAuthToken 解析请求凭证为 Identity 并写入上下文。
// 不会中断请求：缺失或无效的 Token 得到 Anonymous，由服务层拒绝。
func UserAuthToken(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := app.Anonymous()
		if token := requestToken(c); token != "" {
			if verified, err := tm.Verify(token); err == nil {
				id = verified
			}
		}
		app.SetIdentity(c, id)
		c.Next()
	}
}

// requestToken 依次从 Authorization 头、token 头、authorization 与 token 查询参数中读取
func requestToken(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.GetHeader("Token")
	}
	if token == "" {
		token = c.Query("authorization")
	}
	if token == "" {
		token = c.Query("token")
	}
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
