package api_router

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// Check liveness, reachable with or without a credential
// @Summary Liveness
// @Description 检查服务状态与数据库连接，无需认证
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.HealthDTO} "Success"
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	res := &dto.HealthDTO{
		Status:        "ok",
		Version:       h.App.Version().Version,
		Database:      "ok",
		Authenticated: pkgapp.IdentityFrom(c).IsAuthenticated(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.App.Ping(ctx); err != nil {
		res.Database = "unavailable"
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(res))
}
