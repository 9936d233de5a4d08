package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/golang-jwt/jwt/v5"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "fast-note-service"

// DefaultTokenExpiry 默认 Token 有效期
const DefaultTokenExpiry = 24 * time.Hour

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey string        `yaml:"secret-key"` // JWT 签名密钥
	Expiry    time.Duration `yaml:"expiry"`     // Token 过期时间，默认 24 小时
	Issuer    string        `yaml:"issuer"`     // Token 签发者
}

// TokenManager 定义 Token 管理接口
type TokenManager interface {
	// Generate issues a signed token for uid
	// Generate 为 uid 签发 Token
	Generate(uid string) (string, error)
	// Parse returns the claims of a valid token, with the underlying reason on failure
	// Parse 解析有效 Token 的声明，失败时返回具体原因
	Parse(token string) (*UserClaims, error)
	// Verify returns Authenticated(sub) or the uniform code.ErrorUserAuthFailed
	// Verify 返回 Authenticated(sub)，任何失败都统一返回 code.ErrorUserAuthFailed
	Verify(token string) (Identity, error)
	// Expiry 返回 Token 有效期
	Expiry() time.Duration
}

// tokenManager 实现 TokenManager 接口
type tokenManager struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(cfg TokenConfig) TokenManager {
	// 设置默认值
	if cfg.Expiry == 0 {
		cfg.Expiry = DefaultTokenExpiry
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &tokenManager{config: cfg, now: time.Now}
}

// UserClaims only carries the subject; everything else about the user is read from storage
// UserClaims 只携带 subject，用户的其他信息都从存储中读取
type UserClaims struct {
	jwt.RegisteredClaims
}

// Generate 生成一个新的 JWT Token
func (t *tokenManager) Generate(uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("empty subject")
	}
	now := t.now()
	claims := &UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.config.SecretKey))
}

// Parse 解析 JWT Token 并返回声明
func (t *tokenManager) Parse(token string) (*UserClaims, error) {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	claims := &UserClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.config.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}

	if !parsedToken.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}

// Verify 验证 Token 并返回身份，失败原因不向调用方暴露
func (t *tokenManager) Verify(token string) (Identity, error) {
	claims, err := t.Parse(token)
	if err != nil {
		return Anonymous(), code.ErrorUserAuthFailed
	}
	return Authenticated(claims.Subject), nil
}

// Expiry 返回 Token 有效期
func (t *tokenManager) Expiry() time.Duration {
	return t.config.Expiry
}
