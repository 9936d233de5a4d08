package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	internalApp "github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/dao"
	"github.com/haierkeys/fast-note-service/internal/middleware"
	"github.com/haierkeys/fast-note-service/internal/routers"
	"github.com/haierkeys/fast-note-service/internal/task"
	"github.com/haierkeys/fast-note-service/pkg/logger"
	"github.com/haierkeys/fast-note-service/pkg/safe_close"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// defaultSecretKey placeholder secret shipped in the embedded config
// defaultSecretKey 内嵌默认配置中的占位密钥
const defaultSecretKey = "fast-note-Auth-Token"

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	logger            *zap.Logger            // 日志对象
	config            *internalApp.AppConfig // 应用配置
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	serving           sync.WaitGroup
	app               *internalApp.App
}

// checkSecurityConfig 检查安全配置，使用默认密钥时输出警告
func checkSecurityConfig(cfg *internalApp.AppConfig, lg *zap.Logger) {
	if cfg.Security.AuthTokenKey != defaultSecretKey {
		return
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("SECURITY WARNING: Using default secret key!")
	fmt.Println()
	fmt.Println("Please modify 'security.auth-token-key' in config.yaml")
	fmt.Println("Generate a secure key with:")
	fmt.Println("  openssl rand -base64 32")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	lg.Warn("Using default secret key - please change security.auth-token-key in config.yaml")
}

func NewServer(runEnv *runFlags) (*Server, error) {
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if runEnv.runMode != "" {
		appConfig.Server.RunMode = runEnv.runMode
	}
	if runEnv.port != "" {
		port := runEnv.port
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		appConfig.Server.HttpPort = port
	}
	switch appConfig.Server.RunMode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(appConfig.Server.RunMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	if err := initStorage(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	s.logger, err = logger.NewLogger(appConfig.GetLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	checkSecurityConfig(appConfig, s.logger)

	db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), s.logger)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}

	s.app, err = internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}

	uni, err := routers.SetupValidator()
	if err != nil {
		return nil, fmt.Errorf("initValidator: %w", err)
	}

	// 每个 Server 使用独立的 registry，配置重载时不会重复注册
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("initMetrics: %w", err)
	}

	if err := initScheduler(s); err != nil {
		_ = s.app.Shutdown(context.Background())
		return nil, fmt.Errorf("initScheduler: %w", err)
	}

	s.logger.Warn(fmt.Sprintf("%s v%s\nGit: %s\nBuildTime: %s\n", internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", httpAddr))
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewRouter(s.app, uni, metrics),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve("api", s.httpServer)
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("private_router", zap.String("config.server.PrivateHttpListen", httpAddr))
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouter(appConfig.Server.RunMode, registry, s.logger),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve("private api", s.privateHttpServer)
	}

	// 关闭信号到达后，待 HTTP 服务停止再排空写队列并关闭数据库
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		s.serving.Wait()
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		} else {
			s.logger.Info("App container shutdown gracefully")
		}
	})

	return s, nil
}

// serve runs srv until the close signal; a listen error triggers the close signal
// serve 运行 srv 直到收到关闭信号，监听失败时发出关闭信号
func (s *Server) serve(name string, srv *http.Server) {
	s.serving.Add(1)
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		defer s.serving.Done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			if err != nil && err != http.ErrServerClosed {
				s.logger.Error(name+" service err", zap.Error(err))
				s.sc.SendCloseSignal(err)
			}
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" service shutdown error", zap.Error(err))
			}
		}
	})
}

func initScheduler(s *Server) error {
	manager := task.NewManager(s.app, s.sc)
	if err := manager.RegisterTasks(); err != nil {
		return err
	}
	manager.Start()
	return nil
}

// initStorage 创建日志与数据库目录
func initStorage(cfg *internalApp.AppConfig) error {
	dirs := []string{filepath.Dir(cfg.Log.File)}
	if cfg.Database.Type == dao.DialectSQLite {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Shutdown sends the close signal and waits for every component to stop
// Shutdown 发送关闭信号并等待所有组件退出
func (s *Server) Shutdown() error {
	s.sc.SendCloseSignal(nil)
	return s.sc.WaitClosed()
}

// Done 服务因错误或关闭信号停止时关闭
func (s *Server) Done() <-chan struct{} {
	return s.sc.CloseSignal()
}
