// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/fast-note-service/internal/dao"
	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/internal/service"
	pkgapp "github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// Repository 层
	UserRepo   domain.UserRepository
	FolderRepo domain.FolderRepository
	NoteRepo   domain.NoteRepository

	// Service 层
	UserService   service.UserService
	FolderService service.FolderService
	NoteService   service.NoteService

	TokenManager pkgapp.TokenManager

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewApp 创建应用容器实例
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config: cfg,
		logger: logger,
		DB:     db,
	}

	wqConfig := cfg.GetWriteQueueConfig()
	a.Dao = dao.New(db, dao.WithLogger(logger), dao.WithWriteQueueManager(writequeue.New(&wqConfig, logger)))

	if cfg.Database.AutoMigrate {
		if err := a.Dao.AutoMigrate(); err != nil {
			return nil, err
		}
	}

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    pkgapp.DefaultTokenIssuer,
		Expiry:    pkgapp.DefaultTokenExpiry,
	})

	a.UserRepo = dao.NewUserRepository(a.Dao)
	a.FolderRepo = dao.NewFolderRepository(a.Dao)
	a.NoteRepo = dao.NewNoteRepository(a.Dao)

	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.User.RegisterIsEnable,
		},
		App: service.AppServiceConfig{
			DefaultFolderName: cfg.App.DefaultFolderName,
		},
	}

	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, logger, svcConfig)
	a.FolderService = service.NewFolderService(a.UserRepo, a.FolderRepo, logger, svcConfig)
	a.NoteService = service.NewNoteService(a.UserRepo, a.NoteRepo, logger, svcConfig)

	logger.Info("App container initialized",
		zap.String("database", a.Dao.Dialect()),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity),
		zap.Duration("tokenExpiry", a.TokenManager.Expiry()))

	return a, nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// Ping checks the database connection
// Ping 检查数据库连接
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown drains the write queues and closes the database, only the first call does work
// Shutdown 排空写队列并关闭数据库，仅首次调用生效
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		if ctx == nil {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
			defer cancel()
		}
		a.logger.Info("App container shutting down...")
		a.shutdownErr = a.Dao.Close(ctx)
		if a.shutdownErr != nil {
			a.logger.Warn("App container shutdown completed with error", zap.Error(a.shutdownErr))
			return
		}
		a.logger.Info("App container shutdown completed")
	})
	return a.shutdownErr
}
