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

// AssignmentConfigHandler 分配配置模块 HTTP 处理器
type AssignmentConfigHandler struct {
	configSvc service.AssignmentConfigService
}

// NewAssignmentConfigHandler 创建 AssignmentConfigHandler
func NewAssignmentConfigHandler(configSvc service.AssignmentConfigService) *AssignmentConfigHandler {
	return &AssignmentConfigHandler{configSvc: configSvc}
}

// Upsert 写入某作用域的配置
// PUT /api/v1/assignment-configs
func (h *AssignmentConfigHandler) Upsert(c *gin.Context) {
	var req dto.UpsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.configSvc.Upsert(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, result)
}

// GetEffective 查询合并后的生效配置
// GET /api/v1/assignment-configs/effective
func (h *AssignmentConfigHandler) GetEffective(c *gin.Context) {
	var req dto.EffectiveConfigRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	result, err := h.configSvc.GetEffective(c.Request.Context(), &req)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, result)
}

// CreateExclude 新增排除规则
// POST /api/v1/assignment-configs/exclude-pairs
func (h *AssignmentConfigHandler) CreateExclude(c *gin.Context) {
	var req dto.CreateExcludePairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.configSvc.CreateExclude(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.Created(c, result)
}

// ListExcludes 排除规则列表
// GET /api/v1/assignment-configs/exclude-pairs
func (h *AssignmentConfigHandler) ListExcludes(c *gin.Context) {
	var req dto.PairListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	pairs, err := h.configSvc.ListExcludes(c.Request.Context(), req.TeamID)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, gin.H{"list": pairs})
}

// DeleteExclude 删除排除规则
// DELETE /api/v1/assignment-configs/exclude-pairs/:id
func (h *AssignmentConfigHandler) DeleteExclude(c *gin.Context) {
	if err := h.configSvc.DeleteExclude(c.Request.Context(), c.Param("id")); err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreateForce 新增强制规则
// POST /api/v1/assignment-configs/force-pairs
func (h *AssignmentConfigHandler) CreateForce(c *gin.Context) {
	var req dto.CreateForcePairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.configSvc.CreateForce(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.Created(c, result)
}

// ListForces 强制规则列表
// GET /api/v1/assignment-configs/force-pairs
func (h *AssignmentConfigHandler) ListForces(c *gin.Context) {
	var req dto.PairListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	pairs, err := h.configSvc.ListForces(c.Request.Context(), req.TeamID)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, gin.H{"list": pairs})
}

// DeleteForce 删除强制规则
// DELETE /api/v1/assignment-configs/force-pairs/:id
func (h *AssignmentConfigHandler) DeleteForce(c *gin.Context) {
	if err := h.configSvc.DeleteForce(c.Request.Context(), c.Param("id")); err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleConfigError 统一处理分配配置模块业务错误
func (h *AssignmentConfigHandler) handleConfigError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConfigNotFound):
		response.NotFound(c, 14101, "分配配置不存在")
	case errors.Is(err, service.ErrPairNotFound):
		response.NotFound(c, 14102, "规则不存在")
	case errors.Is(err, service.ErrSamePairUsers):
		response.BadRequest(c, 14103, "规则的两个用户不能相同")
	case errors.Is(err, service.ErrScopeIDMissing):
		response.BadRequest(c, 14104, "team/user 作用域必须指定 scope_id")
	case errors.Is(err, service.ErrBadRuleWindow):
		response.BadRequest(c, 14105, "规则生效区间非法")
	case errors.Is(err, engine.ErrInvalidWeights):
		response.BadRequest(c, 14106, "权重之和必须为 1.0，回避窗口 1-12 周")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14107, "配置已被他人修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/assignment_config_handler.go
