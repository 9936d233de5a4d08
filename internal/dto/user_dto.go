package dto

import "github.com/haierkeys/fast-note-service/pkg/timex"

// UserRegisterRequest User registration request parameters
// 用户注册请求参数
type UserRegisterRequest struct {
	Email       string `json:"email" form:"email" binding:"required,email"`             // User email // 用户邮件
	Password    string `json:"password" form:"password" binding:"required"`             // User password // 用户密码
	DisplayName string `json:"displayName" form:"displayName" binding:"required,notblank"` // Display name // 显示名称
}

// UserLoginRequest User login request parameters
// 用户登录请求参数
type UserLoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`       // Email // 邮件
	Password string `json:"password" form:"password" binding:"required"` // Password // 密码
}

// UserChangePasswordRequest Request parameters for changing password
// 修改密码请求参数
type UserChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" binding:"required"` // Old password // 旧密码
	Password    string `json:"password" form:"password" binding:"required"`       // New password // 新密码
}

// ---------------- DTO / Response ----------------

// UserDTO User data transfer object
// UserDTO 用户数据传输对象
type UserDTO struct {
	UID         string     `json:"uid"`             // User ID (primary key) // 用户唯一标识（主键）
	Email       string     `json:"email"`           // Email address // 邮件地址
	DisplayName string     `json:"displayName"`     // Display name // 显示名称
	IsActive    bool       `json:"isActive"`        // Account enabled // 账号是否启用
	Token       string     `json:"token,omitempty"` // Authentication Token // 认证 Token
	UpdatedAt   timex.Time `json:"updatedAt"`       // Last updated time // 最后更新时间
	CreatedAt   timex.Time `json:"createdAt"`       // Account created time // 账号创建时间
}
