package routers

import (
	"time"

	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/middleware"
	"github.com/haierkeys/fast-note-service/internal/routers/api_router"
	pkgapp "github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// 登录与注册按客户端 IP 限流
func newMethodLimiter() limiter.Face {
	return limiter.NewMethodLimiter().AddBuckets(
		limiter.BucketRule{
			Key:          "/api/user/login",
			FillInterval: time.Second,
			Capacity:     10,
			Quantum:      1,
		},
		limiter.BucketRule{
			Key:          "/api/user/register",
			FillInterval: time.Minute,
			Capacity:     5,
			Quantum:      5,
		},
	)
}

// NewRouter builds the public API router; metrics may be nil
// NewRouter 创建公开 API 路由，metrics 可为 nil
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator, metrics *middleware.Metrics) *gin.Engine {
	cfg := appContainer.Config()
	zl := appContainer.Logger()

	pagination := pkgapp.PaginationConfig{
		DefaultPageSize: cfg.App.DefaultPageSize,
		MaxPageSize:     cfg.App.MaxPageSize,
	}
	if pagination.DefaultPageSize <= 0 || pagination.MaxPageSize <= 0 {
		pagination = pkgapp.DefaultPaginationConfig
	}

	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(zl))
	r.Use(middleware.TraceMiddleware(cfg.Tracer.Enabled, cfg.Tracer.Header))
	r.Use(middleware.Cors())
	r.Use(middleware.LangWithTranslator(uni))
	if metrics != nil {
		r.Use(metrics.Handler())
	}

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		api.Use(middleware.AccessLogWithLogger(zl))
		api.Use(middleware.RateLimiter(newMethodLimiter()))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.UserAuthToken(appContainer.TokenManager))
		api.Use(func(c *gin.Context) {
			pkgapp.SetPaginationConfig(c, pagination)
			c.Next()
		})

		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		userHandler := api_router.NewUserHandler(appContainer)
		folderHandler := api_router.NewFolderHandler(appContainer)
		noteHandler := api_router.NewNoteHandler(appContainer)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)
		api.GET("/user/info", userHandler.Info)
		api.POST("/user/change_password", userHandler.ChangePassword)
		api.POST("/user/deactivate", userHandler.Deactivate)

		api.GET("/folders", folderHandler.List)
		api.GET("/folder/tree", folderHandler.Tree)
		api.GET("/folder", folderHandler.Get)
		api.POST("/folder", folderHandler.Create)
		api.PUT("/folder", folderHandler.Update)
		api.PUT("/folder/move", folderHandler.Move)
		api.DELETE("/folder", folderHandler.Delete)
		api.POST("/folder/default", folderHandler.EnsureDefault)

		api.GET("/notes", noteHandler.List)
		api.GET("/note", noteHandler.View)
		api.POST("/note", noteHandler.Create)
		api.PUT("/note", noteHandler.Update)
		api.PUT("/note/move", noteHandler.Move)
		api.PUT("/note/pin", noteHandler.TogglePin)
		api.DELETE("/note", noteHandler.Delete)
		api.GET("/note/search", noteHandler.Search)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
