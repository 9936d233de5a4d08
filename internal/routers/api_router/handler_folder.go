package api_router

import (
	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// FolderHandler 文件夹 API 路由处理器
type FolderHandler struct {
	*Handler
}

// NewFolderHandler 创建 FolderHandler 实例
func NewFolderHandler(a *app.App) *FolderHandler {
	return &FolderHandler{Handler: NewHandler(a)}
}

// Create 创建文件夹
// @Summary Create folder
// @Description 在根目录或指定父文件夹下创建文件夹，同级名称唯一
// @Tags Folder
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.FolderCreateRequest true "Folder Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.FolderDTO} "Success"
// @Router /api/folder [post]
func (h *FolderHandler) Create(c *gin.Context) {
	params := &dto.FolderCreateRequest{}
	if !h.bind(c, params) {
		return
	}

	folder, err := h.App.FolderService.Create(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "FolderHandler.Create", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(folder))
}

// EnsureDefault 获取默认文件夹，不存在时创建
func (h *FolderHandler) EnsureDefault(c *gin.Context) {
	folder, err := h.App.FolderService.EnsureDefault(c.Request.Context(), pkgapp.IdentityFrom(c))
	if err != nil {
		h.fail(c, "FolderHandler.EnsureDefault", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(folder))
}

// Update 更新文件夹，未提供的字段保持不变
// @Summary Update folder
// @Tags Folder
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.FolderUpdateRequest true "Folder Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.FolderDTO} "Success"
// @Router /api/folder [put]
func (h *FolderHandler) Update(c *gin.Context) {
	params := &dto.FolderUpdateRequest{}
	if !h.bind(c, params) {
		return
	}

	folder, err := h.App.FolderService.Update(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "FolderHandler.Update", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(folder))
}

// Move 移动文件夹，parentId 为空表示移动到根目录
func (h *FolderHandler) Move(c *gin.Context) {
	params := &dto.FolderMoveRequest{}
	if !h.bind(c, params) {
		return
	}

	folder, err := h.App.FolderService.Move(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "FolderHandler.Move", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(folder))
}

// Delete 删除文件夹及其子文件夹，其中的笔记移出文件夹
// @Summary Delete folder
// @Tags Folder
// @Security UserAuthToken
// @Produce json
// @Param id query string true "Folder ID"
// @Success 200 {object} pkgapp.Res{data=dto.FolderDeleteDTO} "Success"
// @Router /api/folder [delete]
func (h *FolderHandler) Delete(c *gin.Context) {
	params := &dto.FolderDeleteRequest{}
	if !h.bind(c, params) {
		return
	}

	res, err := h.App.FolderService.Delete(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "FolderHandler.Delete", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(res))
}

// Get 获取文件夹详情
func (h *FolderHandler) Get(c *gin.Context) {
	params := &dto.FolderGetRequest{}
	if !h.bind(c, params) {
		return
	}

	folder, err := h.App.FolderService.Get(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "FolderHandler.Get", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(folder))
}

// List 获取文件夹列表
func (h *FolderHandler) List(c *gin.Context) {
	params := &dto.FolderListRequest{}
	if !h.bind(c, params) {
		return
	}

	folders, err := h.App.FolderService.List(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "FolderHandler.List", err)
		return
	}

	pkgapp.NewResponse(c).ToResponseList(code.Success, folders, len(folders))
}

// Tree 获取文件夹树
func (h *FolderHandler) Tree(c *gin.Context) {
	tree, err := h.App.FolderService.Tree(c.Request.Context(), pkgapp.IdentityFrom(c))
	if err != nil {
		h.fail(c, "FolderHandler.Tree", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(tree))
}
