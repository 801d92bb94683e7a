package dto

// ── 分配配置模块 DTO ──

// UpsertConfigRequest 写入某作用域的分配配置（存在则更新，带乐观锁版本）
type UpsertConfigRequest struct {
	Scope           string   `json:"scope"            binding:"required,oneof=global team user"`
	ScopeID         string   `json:"scope_id"         binding:"omitempty,uuid"`
	AvoidanceWeeks  *int     `json:"avoidance_weeks"  binding:"omitempty,min=1,max=12"`
	MaxPerWeek      *int     `json:"max_per_week"     binding:"omitempty,min=1,max=10"`
	SkillWeight     *float64 `json:"skill_weight"     binding:"omitempty,min=0,max=1"`
	LoadWeight      *float64 `json:"load_weight"      binding:"omitempty,min=0,max=1"`
	DiversityWeight *float64 `json:"diversity_weight" binding:"omitempty,min=0,max=1"`
	Version         int      `json:"version"          binding:"omitempty,min=0"`
}

// EffectiveConfigRequest 查询合并后的生效配置
type EffectiveConfigRequest struct {
	TeamID string `form:"team_id" binding:"required,uuid"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// ConfigResponse 单层配置响应
type ConfigResponse struct {
	ID              string   `json:"id"`
	Scope           string   `json:"scope"`
	ScopeID         string   `json:"scope_id,omitempty"`
	AvoidanceWeeks  *int     `json:"avoidance_weeks,omitempty"`
	MaxPerWeek      *int     `json:"max_per_week,omitempty"`
	SkillWeight     *float64 `json:"skill_weight,omitempty"`
	LoadWeight      *float64 `json:"load_weight,omitempty"`
	DiversityWeight *float64 `json:"diversity_weight,omitempty"`
	Version         int      `json:"version"`
	UpdatedAt       string   `json:"updated_at"`
}

// EffectiveConfigResponse 全局→团队→用户逐层覆盖后的最终值
type EffectiveConfigResponse struct {
	AvoidanceWeeks  int     `json:"avoidance_weeks"`
	MaxPerWeek      int     `json:"max_per_week"`
	SkillWeight     float64 `json:"skill_weight"`
	LoadWeight      float64 `json:"load_weight"`
	DiversityWeight float64 `json:"diversity_weight"`
}

// ── 排除 / 强制规则 DTO ──

// CreateExcludePairRequest 新增排除规则
type CreateExcludePairRequest struct {
	TeamID        string `json:"team_id"        binding:"required,uuid"`
	UserAID       string `json:"user_a_id"      binding:"required,uuid"`
	UserBID       string `json:"user_b_id"      binding:"required,uuid"`
	Reason        string `json:"reason"         binding:"omitempty,max=500"`
	EffectiveFrom string `json:"effective_from" binding:"omitempty,datetime=2006-01-02"`
	EffectiveTo   string `json:"effective_to"   binding:"omitempty,datetime=2006-01-02"`
}

// CreateForcePairRequest 新增强制规则（有方向：评审人→被评审人）
type CreateForcePairRequest struct {
	TeamID        string `json:"team_id"        binding:"required,uuid"`
	ReviewerID    string `json:"reviewer_id"    binding:"required,uuid"`
	RevieweeID    string `json:"reviewee_id"    binding:"required,uuid"`
	Priority      int    `json:"priority"       binding:"omitempty,min=0,max=100"`
	Reason        string `json:"reason"         binding:"omitempty,max=500"`
	EffectiveFrom string `json:"effective_from" binding:"omitempty,datetime=2006-01-02"`
	EffectiveTo   string `json:"effective_to"   binding:"omitempty,datetime=2006-01-02"`
}

// PairListRequest 规则列表查询参数
type PairListRequest struct {
	TeamID string `form:"team_id" binding:"required,uuid"`
}

// ExcludePairResponse 排除规则响应
type ExcludePairResponse struct {
	ID            string `json:"id"`
	TeamID        string `json:"team_id"`
	UserAID       string `json:"user_a_id"`
	UserBID       string `json:"user_b_id"`
	Reason        string `json:"reason,omitempty"`
	EffectiveFrom string `json:"effective_from,omitempty"`
	EffectiveTo   string `json:"effective_to,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// ForcePairResponse 强制规则响应
type ForcePairResponse struct {
	ID            string `json:"id"`
	TeamID        string `json:"team_id"`
	ReviewerID    string `json:"reviewer_id"`
	RevieweeID    string `json:"reviewee_id"`
	Priority      int    `json:"priority"`
	Reason        string `json:"reason,omitempty"`
	EffectiveFrom string `json:"effective_from,omitempty"`
	EffectiveTo   string `json:"effective_to,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// [自证通过] internal/dto/assignment_config.go
