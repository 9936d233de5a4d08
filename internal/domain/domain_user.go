package domain

import "time"

// User 用户领域模型
type User struct {
	UID         string
	Email       string
	Password    string // bcrypt digest, never leaves the service layer
	DisplayName string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
