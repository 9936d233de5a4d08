package api_router

import (
	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// UserHandler user API router handler
// UserHandler 用户 API 路由处理器
type UserHandler struct {
	*Handler
}

// NewUserHandler creates UserHandler instance
// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(a *app.App) *UserHandler {
	return &UserHandler{Handler: NewHandler(a)}
}

// Register user registration
// @Summary User registration
// @Description 注册新账号并返回 Token，注册功能可能在服务器设置中被禁用
// @Tags User
// @Accept json
// @Produce json
// @Param params body dto.UserRegisterRequest true "Register Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.UserDTO} "Success"
// @Router /api/user/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	params := &dto.UserRegisterRequest{}
	if !h.bind(c, params) {
		return
	}

	userDTO, err := h.App.UserService.Register(c.Request.Context(), params)
	if err != nil {
		h.fail(c, "UserHandler.Register", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(userDTO))
}

// Login user login
// @Summary User login
// @Tags User
// @Accept json
// @Produce json
// @Param params body dto.UserLoginRequest true "Login Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.UserDTO} "Success"
// @Router /api/user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	params := &dto.UserLoginRequest{}
	if !h.bind(c, params) {
		return
	}

	userDTO, err := h.App.UserService.Login(c.Request.Context(), params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.fail(c, "UserHandler.Login", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(userDTO))
}

// Info 获取当前用户信息
func (h *UserHandler) Info(c *gin.Context) {
	userDTO, err := h.App.UserService.GetInfo(c.Request.Context(), pkgapp.IdentityFrom(c))
	if err != nil {
		h.fail(c, "UserHandler.Info", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(userDTO))
}

// ChangePassword 修改当前用户密码
func (h *UserHandler) ChangePassword(c *gin.Context) {
	params := &dto.UserChangePasswordRequest{}
	if !h.bind(c, params) {
		return
	}

	if err := h.App.UserService.ChangePassword(c.Request.Context(), pkgapp.IdentityFrom(c), params); err != nil {
		h.fail(c, "UserHandler.ChangePassword", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success)
}

// Deactivate 停用当前账号
func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.App.UserService.Deactivate(c.Request.Context(), pkgapp.IdentityFrom(c)); err != nil {
		h.fail(c, "UserHandler.Deactivate", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success)
}
