package service

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/internal/dto"
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/logger"
	"github.com/haierkeys/fast-note-service/pkg/timex"
	"github.com/haierkeys/fast-note-service/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	displayNameMinLength = 2
	displayNameMaxLength = 100
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, params *dto.UserRegisterRequest) (*dto.UserDTO, error)

	// Login 用户登录
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error)

	// ChangePassword 修改密码
	ChangePassword(ctx context.Context, id app.Identity, params *dto.UserChangePasswordRequest) error

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, id app.Identity) (*dto.UserDTO, error)

	// Deactivate 停用账号，已签发的 Token 随即失效
	Deactivate(ctx context.Context, id app.Identity) error
}

// userService 实现 UserService 接口
type userService struct {
	guard        identityGuard
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
	config       *ServiceConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, logger *zap.Logger, config *ServiceConfig) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		guard:        identityGuard{users: userRepo},
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *userService) domainToDTO(user *domain.User) *dto.UserDTO {
	if user == nil {
		return nil
	}
	return &dto.UserDTO{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsActive:    user.IsActive,
		UpdatedAt:   timex.Time(user.UpdatedAt),
		CreatedAt:   timex.Time(user.CreatedAt),
	}
}

// Register 用户注册
func (s *userService) Register(ctx context.Context, params *dto.UserRegisterRequest) (*dto.UserDTO, error) {
	// 检查注册是否启用
	if s.config == nil || !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterIsDisable
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if !util.IsValidEmail(email) {
		return nil, code.ErrorUserEmailNotValid
	}
	if !util.IsValidPassword(params.Password) {
		return nil, code.ErrorUserPasswordNotValid
	}
	displayName := strings.TrimSpace(params.DisplayName)
	if n := util.RuneLen(displayName); n < displayNameMinLength || n > displayNameMaxLength {
		return nil, code.ErrorUserDisplayNameNotValid
	}

	// 检查邮箱是否已存在
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, code.ErrorUserEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mapError(err, nil, nil)
	}

	// 生成密码哈希
	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return nil, code.ErrorPasswordHash.WithDetails(err.Error())
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
		IsActive:    true,
	})
	if err != nil {
		// 并发注册由唯一索引兜底
		return nil, mapError(err, nil, code.ErrorUserEmailAlreadyExists)
	}

	// 生成 Token
	token, err := s.tokenManager.Generate(user.UID)
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}

	s.logger.Info("user registered", zap.String(logger.FieldUID, user.UID))

	d := s.domainToDTO(user)
	d.Token = token
	return d, nil
}

// Login 用户登录；邮箱不存在、密码错误与账号停用返回同一错误
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserLoginFailed
		}
		return nil, mapError(err, nil, nil)
	}

	if !util.CheckPasswordHash(user.Password, params.Password) || !user.IsActive {
		s.logger.Info("login rejected",
			zap.String(logger.FieldUID, user.UID),
			zap.String("clientIp", clientIP),
		)
		return nil, code.ErrorUserLoginFailed
	}

	token, err := s.tokenManager.Generate(user.UID)
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}

	d := s.domainToDTO(user)
	d.Token = token
	return d, nil
}

// ChangePassword 修改密码
func (s *userService) ChangePassword(ctx context.Context, id app.Identity, params *dto.UserChangePasswordRequest) error {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return mapError(err, code.ErrorUserAuthFailed, nil)
	}
	if !util.CheckPasswordHash(user.Password, params.OldPassword) {
		return code.ErrorUserOldPasswordFailed
	}
	if !util.IsValidPassword(params.Password) {
		return code.ErrorUserPasswordNotValid
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return code.ErrorPasswordHash.WithDetails(err.Error())
	}
	if err := s.userRepo.UpdatePassword(ctx, uid, password); err != nil {
		return mapError(err, code.ErrorUserAuthFailed, nil)
	}
	return nil
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, id app.Identity) (*dto.UserDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, mapError(err, code.ErrorUserAuthFailed, nil)
	}
	return s.domainToDTO(user), nil
}

// Deactivate 停用账号
func (s *userService) Deactivate(ctx context.Context, id app.Identity) error {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetActive(ctx, uid, false); err != nil {
		return mapError(err, code.ErrorUserAuthFailed, nil)
	}
	s.logger.Info("user deactivated", zap.String(logger.FieldUID, uid))
	return nil
}
