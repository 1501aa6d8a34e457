package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shiftswap/internal/dto"
	"shiftswap/internal/service"
	"shiftswap/internal/swap"
	"shiftswap/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SwapHandler 换班申请 HTTP 处理器
type SwapHandler struct {
	swapSvc   service.SwapService
	exportSvc service.ExportService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService, exportSvc service.ExportService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc, exportSvc: exportSvc}
}

// List 当前用户的换班申请视图
// GET /api/v1/swap-requests?status=pending
func (h *SwapHandler) List(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	var q dto.SwapListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 14108, "无效的状态筛选")
		return
	}

	result, err := h.swapSvc.ListView(c.Request.Context(), viewer, q.Status)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// Create 发起换班申请
// POST /api/v1/swap-requests
func (h *SwapHandler) Create(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.swapSvc.Create(c.Request.Context(), viewer, &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 申请详情
// GET /api/v1/swap-requests/:id
func (h *SwapHandler) Get(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Get(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// Approve 同意申请
// POST /api/v1/swap-requests/:id/approve
func (h *SwapHandler) Approve(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Approve(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// Decline 拒绝申请
// POST /api/v1/swap-requests/:id/decline
func (h *SwapHandler) Decline(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Decline(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// Share 分享文案与外链
// GET /api/v1/swap-requests/:id/share
func (h *SwapHandler) Share(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Share(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// Calendar 下载申请涉及班次的日历文件
// GET /api/v1/swap-requests/:id/calendar
func (h *SwapHandler) Calendar(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	id := c.Param("id")
	ics, err := h.swapSvc.Calendar(c.Request.Context(), viewer, id)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	setAttachment(c, "swap_"+id+".ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// Export 导出换班申请 Excel
// GET /api/v1/swap-requests/export?status=pending
func (h *SwapHandler) Export(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 14108, "无效的状态筛选")
		return
	}

	buf, filename, err := h.exportSvc.ExportSwapRequests(c.Request.Context(), viewer, q.Status)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	setAttachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func setAttachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

func (h *SwapHandler) handleSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, swap.ErrNotFound):
		response.NotFound(c, 14101, "换班申请不存在")
	case errors.Is(err, swap.ErrInvalidState):
		response.Conflict(c, 14102, "换班申请已处理")
	case errors.Is(err, swap.ErrUnauthorized):
		response.Forbidden(c, 14103, "无权处理该换班申请")
	case errors.Is(err, swap.ErrInFlight):
		response.Conflict(c, 14104, "换班申请正在处理中，请稍后再试")
	case errors.Is(err, swap.ErrPersistence):
		response.ServiceUnavailable(c, 14105, "换班申请保存失败，请重试")
	case errors.Is(err, swap.ErrInvalidRequest):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14106, "换班申请数据无效", err.Error())
	case errors.Is(err, service.ErrCalendarNoShift):
		response.Error(c, http.StatusUnprocessableEntity, 14107, "班次缺少有效日期，无法生成日历")
	case errors.Is(err, swap.ErrInvalidFilter):
		response.BadRequest(c, 14108, "无效的状态筛选")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11003, "用户不存在")
	default:
		response.InternalError(c)
	}
}
