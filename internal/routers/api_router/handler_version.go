package api_router

import (
	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionHandler 版本信息处理器
type VersionHandler struct {
	*Handler
}

// NewVersionHandler 创建 VersionHandler 实例
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{Handler: NewHandler(a)}
}

// ServerVersion 获取服务端版本信息
// @Summary Server version
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO} "Success"
// @Router /api/version [get]
func (h *VersionHandler) ServerVersion(c *gin.Context) {
	v := h.App.Version()
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(&dto.VersionDTO{
		Name:      app.Name,
		Version:   v.Version,
		GitTag:    v.GitTag,
		BuildTime: v.BuildTime,
	}))
}
