package api_router

import (
	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoteHandler note API router handler
// NoteHandler 笔记 API 路由处理器
type NoteHandler struct {
	*Handler
}

// NewNoteHandler creates NoteHandler instance
// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// Create creates a note, the title is derived from the content when omitted
// @Summary Create note
// @Description 创建笔记，未提供标题时根据内容自动生成
// @Tags Note
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "Note Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "Success"
// @Router /api/note [post]
func (h *NoteHandler) Create(c *gin.Context) {
	params := &dto.NoteCreateRequest{}
	if !h.bind(c, params) {
		return
	}

	note, err := h.App.NoteService.Create(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "NoteHandler.Create", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Update updates content or title, the title is never regenerated
// @Summary Update note
// @Tags Note
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteUpdateRequest true "Note Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "Success"
// @Router /api/note [put]
func (h *NoteHandler) Update(c *gin.Context) {
	params := &dto.NoteUpdateRequest{}
	if !h.bind(c, params) {
		return
	}

	note, err := h.App.NoteService.Update(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "NoteHandler.Update", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Move 移动笔记到文件夹，folderId 为空表示移出文件夹
func (h *NoteHandler) Move(c *gin.Context) {
	params := &dto.NoteMoveRequest{}
	if !h.bind(c, params) {
		return
	}

	note, err := h.App.NoteService.Move(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "NoteHandler.Move", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// TogglePin 切换置顶
func (h *NoteHandler) TogglePin(c *gin.Context) {
	params := &dto.NotePinRequest{}
	if !h.bind(c, params) {
		return
	}

	note, err := h.App.NoteService.TogglePin(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "NoteHandler.TogglePin", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Delete 删除笔记
func (h *NoteHandler) Delete(c *gin.Context) {
	params := &dto.NoteDeleteRequest{}
	if !h.bind(c, params) {
		return
	}

	if err := h.App.NoteService.Delete(c.Request.Context(), pkgapp.IdentityFrom(c), params); err != nil {
		h.fail(c, "NoteHandler.Delete", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success)
}

// View returns a note and counts the view
// @Summary View note
// @Description 获取笔记详情，浏览次数加一
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Param id query string true "Note ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "Success"
// @Router /api/note [get]
func (h *NoteHandler) View(c *gin.Context) {
	params := &dto.NoteGetRequest{}
	if !h.bind(c, params) {
		return
	}

	note, err := h.App.NoteService.View(c.Request.Context(), pkgapp.IdentityFrom(c), params)
	if err != nil {
		h.fail(c, "NoteHandler.View", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// List 笔记列表，置顶优先，按更新时间倒序
func (h *NoteHandler) List(c *gin.Context) {
	params := &dto.NoteListRequest{}
	if !h.bind(c, params) {
		return
	}

	pager := pkgapp.NewPager(c, 0)
	notes, total, err := h.App.NoteService.List(c.Request.Context(), pkgapp.IdentityFrom(c), params, pager)
	if err != nil {
		h.fail(c, "NoteHandler.List", err)
		return
	}

	pkgapp.NewResponse(c).ToResponseList(code.Success, notes, total)
}

// Search 全文搜索当前用户的笔记
// @Summary Search notes
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Param q query string true "Query"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.NoteDTO}} "Success"
// @Router /api/note/search [get]
func (h *NoteHandler) Search(c *gin.Context) {
	params := &dto.NoteSearchRequest{}
	if !h.bind(c, params) {
		return
	}

	pager := pkgapp.NewPager(c, 0)
	notes, total, err := h.App.NoteService.Search(c.Request.Context(), pkgapp.IdentityFrom(c), params, pager)
	if err != nil {
		h.fail(c, "NoteHandler.Search", err)
		return
	}

	pkgapp.NewResponse(c).ToResponseList(code.Success, notes, total)
}
