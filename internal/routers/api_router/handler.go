// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"errors"

	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/middleware"
	pkgapp "github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// bind binds and validates params, writing ErrorInvalidParams on failure
// bind 绑定并校验参数，失败时输出 ErrorInvalidParams
func (h *Handler) bind(c *gin.Context, params interface{}) bool {
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs...))
		return false
	}
	return true
}

// fail renders err; only internal and unavailable failures are logged
// fail 输出错误响应，仅记录内部错误与存储不可用
func (h *Handler) fail(c *gin.Context, method string, err error) {
	var codeErr *code.Code
	if !errors.As(err, &codeErr) {
		codeErr = code.ErrorServerInternal
	}
	if kind := codeErr.Kind(); kind == code.KindInternal || kind == code.KindUnavailable {
		h.App.Logger().Error(method,
			zap.Error(err),
			zap.String(logger.FieldTraceID, middleware.GetTraceIDFromGin(c)),
			zap.String(logger.FieldUID, pkgapp.GetUID(c)),
		)
	}
	pkgapp.NewResponse(c).ToResponse(codeErr)
}
