package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/godlewis/code-review-manage-sub001/config"
	"github.com/godlewis/code-review-manage-sub001/internal/dto"
	"github.com/godlewis/code-review-manage-sub001/internal/engine"
	"github.com/godlewis/code-review-manage-sub001/internal/model"
	"github.com/godlewis/code-review-manage-sub001/internal/repository"
)

// ── 分配配置模块业务错误 ──

var (
	ErrConfigNotFound = errors.New("分配配置不存在")
	ErrPairNotFound   = errors.New("规则不存在")
	ErrSamePairUsers  = errors.New("规则的两个用户不能相同")
	ErrScopeIDMissing = errors.New("team/user 作用域必须指定 scope_id")
	ErrBadRuleWindow  = errors.New("规则生效区间非法")
)

// AssignmentConfigService 分配配置业务接口
type AssignmentConfigService interface {
	// 写入某作用域配置；未提供的字段继承上层生效值
	Upsert(ctx context.Context, req *dto.UpsertConfigRequest, callerID string) (*dto.ConfigResponse, error)
	// 查询 global → team → user 合并后的生效配置
	GetEffective(ctx context.Context, req *dto.EffectiveConfigRequest) (*dto.EffectiveConfigResponse, error)
	// 生成流程使用的团队生效配置（global → team）
	EffectiveForTeam(ctx context.Context, teamID string) (*engine.EffectiveConfig, error)

	CreateExclude(ctx context.Context, req *dto.CreateExcludePairRequest, callerID string) (*dto.ExcludePairResponse, error)
	ListExcludes(ctx context.Context, teamID string) ([]dto.ExcludePairResponse, error)
	DeleteExclude(ctx context.Context, id string) error
	CreateForce(ctx context.Context, req *dto.CreateForcePairRequest, callerID string) (*dto.ForcePairResponse, error)
	ListForces(ctx context.Context, teamID string) ([]dto.ForcePairResponse, error)
	DeleteForce(ctx context.Context, id string) error
}

type assignmentConfigService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentConfigService 创建 AssignmentConfigService 实例
func NewAssignmentConfigService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AssignmentConfigService {
	return &assignmentConfigService{cfg: cfg, repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 配置分层合并
// ════════════════════════════════════════════════════════════

// baseEffective 文件配置兜底值（数据库无任何记录时的默认）
func (s *assignmentConfigService) baseEffective() engine.EffectiveConfig {
	return engine.EffectiveConfig{
		AvoidanceWeeks:        s.cfg.Assign.AvoidanceWeeks,
		MaxAssignmentsPerWeek: s.cfg.Assign.MaxAssignmentsPerWeek,
		SkillWeight:           s.cfg.Assign.SkillWeight,
		LoadWeight:            s.cfg.Assign.LoadWeight,
		DiversityWeight:       s.cfg.Assign.DiversityWeight,
	}
}

// overlay 用一条数据库配置整体覆盖
func overlay(eff *engine.EffectiveConfig, c *model.AssignmentConfig) {
	eff.AvoidanceWeeks = c.AvoidanceWeeks
	eff.MaxAssignmentsPerWeek = c.MaxAssignmentsPerWeek
	eff.SkillWeight = c.SkillWeight
	eff.LoadWeight = c.LoadWeight
	eff.DiversityWeight = c.DiversityWeight
}

// EffectiveForTeam 合并 文件默认 → global → team，供生成流程使用
func (s *assignmentConfigService) EffectiveForTeam(ctx context.Context, teamID string) (*engine.EffectiveConfig, error) {
	eff := s.baseEffective()

	global, err := s.repo.Config.GetGlobal(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询全局配置失败", zap.Error(err))
		return nil, err
	}
	if global != nil {
		overlay(&eff, global)
	}

	team, err := s.repo.Config.GetByTeam(ctx, teamID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询团队配置失败", zap.Error(err))
		return nil, err
	}
	if team != nil {
		overlay(&eff, team)
	}

	if err := eff.Validate(); err != nil {
		return nil, err
	}
	return &eff, nil
}

func (s *assignmentConfigService) GetEffective(ctx context.Context, req *dto.EffectiveConfigRequest) (*dto.EffectiveConfigResponse, error) {
	eff, err := s.EffectiveForTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}

	// 用户层仅影响查询该用户的生效视图
	if req.UserID != "" {
		userCfg, err := s.repo.Config.GetByUser(ctx, req.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询用户配置失败", zap.Error(err))
			return nil, err
		}
		if userCfg != nil {
			overlay(eff, userCfg)
			if err := eff.Validate(); err != nil {
				return nil, err
			}
		}
	}

	return &dto.EffectiveConfigResponse{
		AvoidanceWeeks:  eff.AvoidanceWeeks,
		MaxPerWeek:      eff.MaxAssignmentsPerWeek,
		SkillWeight:     eff.SkillWeight,
		LoadWeight:      eff.LoadWeight,
		DiversityWeight: eff.DiversityWeight,
	}, nil
}

func (s *assignmentConfigService) Upsert(ctx context.Context, req *dto.UpsertConfigRequest, callerID string) (*dto.ConfigResponse, error) {
	if req.Scope != model.ScopeGlobal && req.ScopeID == "" {
		return nil, ErrScopeIDMissing
	}

	existing, err := s.getByScope(ctx, req.Scope, req.ScopeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询配置失败", zap.Error(err))
		return nil, err
	}

	var target *model.AssignmentConfig
	if existing != nil {
		target = existing
	} else {
		// 新记录从上层生效值播种，保证整行自洽
		parent, err := s.parentEffective(ctx, req.Scope, req.ScopeID)
		if err != nil {
			return nil, err
		}
		target = &model.AssignmentConfig{
			Scope:                 req.Scope,
			AvoidanceWeeks:        parent.AvoidanceWeeks,
			MaxAssignmentsPerWeek: parent.MaxAssignmentsPerWeek,
			SkillWeight:           parent.SkillWeight,
			LoadWeight:            parent.LoadWeight,
			DiversityWeight:       parent.DiversityWeight,
			Enabled:               true,
		}
		switch req.Scope {
		case model.ScopeTeam:
			target.TeamID = &req.ScopeID
		case model.ScopeUser:
			target.UserID = &req.ScopeID
		}
		target.CreatedBy = &callerID
	}

	if req.AvoidanceWeeks != nil {
		target.AvoidanceWeeks = *req.AvoidanceWeeks
	}
	if req.MaxPerWeek != nil {
		target.MaxAssignmentsPerWeek = *req.MaxPerWeek
	}
	if req.SkillWeight != nil {
		target.SkillWeight = *req.SkillWeight
	}
	if req.LoadWeight != nil {
		target.LoadWeight = *req.LoadWeight
	}
	if req.DiversityWeight != nil {
		target.DiversityWeight = *req.DiversityWeight
	}

	// 写入前校验整行
	check := engine.EffectiveConfig{
		AvoidanceWeeks:        target.AvoidanceWeeks,
		MaxAssignmentsPerWeek: target.MaxAssignmentsPerWeek,
		SkillWeight:           target.SkillWeight,
		LoadWeight:            target.LoadWeight,
		DiversityWeight:       target.DiversityWeight,
	}
	if err := check.Validate(); err != nil {
		return nil, err
	}

	target.UpdatedBy = &callerID
	if existing != nil {
		if req.Version > 0 {
			target.Version = req.Version
		}
		if err := s.repo.Config.Update(ctx, target); err != nil {
			s.logger.Error("更新配置失败", zap.Error(err))
			return nil, err
		}
	} else {
		if err := s.repo.Config.Create(ctx, target); err != nil {
			s.logger.Error("创建配置失败", zap.Error(err))
			return nil, err
		}
	}

	return toConfigResponse(target), nil
}

func (s *assignmentConfigService) getByScope(ctx context.Context, scope, scopeID string) (*model.AssignmentConfig, error) {
	switch scope {
	case model.ScopeGlobal:
		return s.repo.Config.GetGlobal(ctx)
	case model.ScopeTeam:
		return s.repo.Config.GetByTeam(ctx, scopeID)
	default:
		return s.repo.Config.GetByUser(ctx, scopeID)
	}
}

// parentEffective 新建某层配置时的播种来源
func (s *assignmentConfigService) parentEffective(ctx context.Context, scope, scopeID string) (*engine.EffectiveConfig, error) {
	switch scope {
	case model.ScopeGlobal:
		eff := s.baseEffective()
		return &eff, nil
	case model.ScopeTeam:
		eff := s.baseEffective()
		global, err := s.repo.Config.GetGlobal(ctx)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if global != nil {
			overlay(&eff, global)
		}
		return &eff, nil
	default:
		// 用户层：以用户无关的团队链无法确定，回落到 global 链
		eff := s.baseEffective()
		global, err := s.repo.Config.GetGlobal(ctx)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if global != nil {
			overlay(&eff, global)
		}
		return &eff, nil
	}
}

// ════════════════════════════════════════════════════════════
// 排除 / 强制规则 CRUD
// ════════════════════════════════════════════════════════════

func (s *assignmentConfigService) CreateExclude(ctx context.Context, req *dto.CreateExcludePairRequest, callerID string) (*dto.ExcludePairResponse, error) {
	if req.UserAID == req.UserBID {
		return nil, ErrSamePairUsers
	}
	from, until, err := parseRuleWindow(req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return nil, err
	}

	pair := &model.ExcludePair{
		TeamID:     req.TeamID,
		UserA:      req.UserAID,
		UserB:      req.UserBID,
		ValidFrom:  from,
		ValidUntil: until,
		Enabled:    true,
		Reason:     req.Reason,
	}
	pair.CreatedBy = &callerID
	pair.UpdatedBy = &callerID

	if err := s.repo.ExcludePair.Create(ctx, pair); err != nil {
		s.logger.Error("创建排除规则失败", zap.Error(err))
		return nil, err
	}
	return toExcludeResponse(pair), nil
}

func (s *assignmentConfigService) ListExcludes(ctx context.Context, teamID string) ([]dto.ExcludePairResponse, error) {
	pairs, err := s.repo.ExcludePair.ListByTeam(ctx, teamID)
	if err != nil {
		s.logger.Error("查询排除规则失败", zap.Error(err))
		return nil, err
	}
	resps := make([]dto.ExcludePairResponse, 0, len(pairs))
	for i := range pairs {
		resps = append(resps, *toExcludeResponse(&pairs[i]))
	}
	return resps, nil
}

func (s *assignmentConfigService) DeleteExclude(ctx context.Context, id string) error {
	if _, err := s.repo.ExcludePair.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPairNotFound
		}
		s.logger.Error("查询排除规则失败", zap.Error(err))
		return err
	}
	return s.repo.ExcludePair.Delete(ctx, id)
}

func (s *assignmentConfigService) CreateForce(ctx context.Context, req *dto.CreateForcePairRequest, callerID string) (*dto.ForcePairResponse, error) {
	if req.ReviewerID == req.RevieweeID {
		return nil, ErrSamePairUsers
	}
	from, until, err := parseRuleWindow(req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return nil, err
	}

	pair := &model.ForcePair{
		TeamID:     req.TeamID,
		ReviewerID: req.ReviewerID,
		RevieweeID: req.RevieweeID,
		Priority:   req.Priority,
		ValidFrom:  from,
		ValidUntil: until,
		Enabled:    true,
		Reason:     req.Reason,
	}
	pair.CreatedBy = &callerID
	pair.UpdatedBy = &callerID

	if err := s.repo.ForcePair.Create(ctx, pair); err != nil {
		s.logger.Error("创建强制规则失败", zap.Error(err))
		return nil, err
	}
	return toForceResponse(pair), nil
}

func (s *assignmentConfigService) ListForces(ctx context.Context, teamID string) ([]dto.ForcePairResponse, error) {
	pairs, err := s.repo.ForcePair.ListByTeam(ctx, teamID)
	if err != nil {
		s.logger.Error("查询强制规则失败", zap.Error(err))
		return nil, err
	}
	resps := make([]dto.ForcePairResponse, 0, len(pairs))
	for i := range pairs {
		resps = append(resps, *toForceResponse(&pairs[i]))
	}
	return resps, nil
}

func (s *assignmentConfigService) DeleteForce(ctx context.Context, id string) error {
	if _, err := s.repo.ForcePair.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPairNotFound
		}
		s.logger.Error("查询强制规则失败", zap.Error(err))
		return err
	}
	return s.repo.ForcePair.Delete(ctx, id)
}

// ── 辅助转换 ──

// parseRuleWindow 解析规则生效区间；起止均可为空，起不可晚于止
func parseRuleWindow(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, until *time.Time
	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, nil, ErrBadRuleWindow
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, nil, ErrBadRuleWindow
		}
		until = &t
	}
	if from != nil && until != nil && from.After(*until) {
		return nil, nil, ErrBadRuleWindow
	}
	return from, until, nil
}

func toConfigResponse(c *model.AssignmentConfig) *dto.ConfigResponse {
	resp := &dto.ConfigResponse{
		ID:              c.ConfigID,
		Scope:           c.Scope,
		AvoidanceWeeks:  &c.AvoidanceWeeks,
		MaxPerWeek:      &c.MaxAssignmentsPerWeek,
		SkillWeight:     &c.SkillWeight,
		LoadWeight:      &c.LoadWeight,
		DiversityWeight: &c.DiversityWeight,
		Version:         c.Version,
		UpdatedAt:       c.UpdatedAt.Format(time.RFC3339),
	}
	if c.TeamID != nil {
		resp.ScopeID = *c.TeamID
	}
	if c.UserID != nil {
		resp.ScopeID = *c.UserID
	}
	return resp
}

func toExcludeResponse(p *model.ExcludePair) *dto.ExcludePairResponse {
	resp := &dto.ExcludePairResponse{
		ID:        p.PairID,
		TeamID:    p.TeamID,
		UserAID:   p.UserA,
		UserBID:   p.UserB,
		Reason:    p.Reason,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.ValidFrom != nil {
		resp.EffectiveFrom = p.ValidFrom.Format("2006-01-02")
	}
	if p.ValidUntil != nil {
		resp.EffectiveTo = p.ValidUntil.Format("2006-01-02")
	}
	return resp
}

func toForceResponse(p *model.ForcePair) *dto.ForcePairResponse {
	resp := &dto.ForcePairResponse{
		ID:         p.PairID,
		TeamID:     p.TeamID,
		ReviewerID: p.ReviewerID,
		RevieweeID: p.RevieweeID,
		Priority:   p.Priority,
		Reason:     p.Reason,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
	if p.ValidFrom != nil {
		resp.EffectiveFrom = p.ValidFrom.Format("2006-01-02")
	}
	if p.ValidUntil != nil {
		resp.EffectiveTo = p.ValidUntil.Format("2006-01-02")
	}
	return resp
}

// [自证通过] internal/service/assignment_config_service.go
