package dto

// ── 评审分配模块 DTO ──

// GenerateAssignmentsRequest 生成（或预览）某团队某周的分配
type GenerateAssignmentsRequest struct {
	TeamID    string `json:"team_id"    binding:"required,uuid"`
	WeekStart string `json:"week_start" binding:"required,datetime=2006-01-02"`
}

// BatchGenerateRequest 多周批量生成请求
type BatchGenerateRequest struct {
	TeamID     string   `json:"team_id"     binding:"required,uuid"`
	WeekStarts []string `json:"week_starts" binding:"required,min=1,max=26,dive,datetime=2006-01-02"`
}

// AdjustAssignmentRequest 手动调整请求：替换被评审人，必须附说明
type AdjustAssignmentRequest struct {
	NewRevieweeID string `json:"new_reviewee_id" binding:"required,uuid"`
	Remarks       string `json:"remarks"         binding:"required,min=2,max=500"`
}

// UpdateStatusRequest 状态流转请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ASSIGNED IN_PROGRESS COMPLETED CANCELLED"`
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// AssignmentListRequest 分配列表查询参数
type AssignmentListRequest struct {
	TeamID    string `form:"team_id"    binding:"required,uuid"`
	WeekStart string `form:"week_start" binding:"required,datetime=2006-01-02"`
}

// ConflictCheckRequest 冲突检查查询参数
type ConflictCheckRequest struct {
	TeamID    string `form:"team_id"    binding:"required,uuid"`
	WeekStart string `form:"week_start" binding:"required,datetime=2006-01-02"`
}

// UserHistoryRequest 用户分配历史查询参数
type UserHistoryRequest struct {
	UserID string `form:"user_id" binding:"required,uuid"`
	Start  string `form:"start"   binding:"required,datetime=2006-01-02"`
	End    string `form:"end"     binding:"required,datetime=2006-01-02"`
}

// ── 响应 ──

// AssignmentResponse 单条分配响应
type AssignmentResponse struct {
	ID               string     `json:"id"`
	TeamID           string     `json:"team_id"`
	Reviewer         *UserBrief `json:"reviewer,omitempty"`
	Reviewee         *UserBrief `json:"reviewee,omitempty"`
	ReviewerID       string     `json:"reviewer_id"`
	RevieweeID       string     `json:"reviewee_id"`
	WeekStart        string     `json:"week_start"`
	Status           string     `json:"status"`
	SkillScore       float64    `json:"skill_score"`
	LoadScore        float64    `json:"load_score"`
	DiversityScore   float64    `json:"diversity_score"`
	TotalScore       float64    `json:"total_score"`
	IsManualAdjusted bool       `json:"is_manual_adjusted"`
	Remarks          string     `json:"remarks,omitempty"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

// GenerateAssignmentsResponse 单周生成/预览结果
type GenerateAssignmentsResponse struct {
	TeamID      string               `json:"team_id"`
	WeekStart   string               `json:"week_start"`
	Assignments []AssignmentResponse `json:"assignments"`
	Unresolved  []string             `json:"unresolved,omitempty"` // 无可行搭档的用户 ID
	Warnings    []string             `json:"warnings,omitempty"`
}

// BatchGenerateResponse 多周批量生成结果：逐周独立成败
type BatchGenerateResponse struct {
	Results []BatchWeekResult `json:"results"`
}

// BatchWeekResult 单周生成结果
type BatchWeekResult struct {
	WeekStart string                       `json:"week_start"`
	Success   bool                         `json:"success"`
	Error     string                       `json:"error,omitempty"`
	Result    *GenerateAssignmentsResponse `json:"result,omitempty"`
}

// ConflictCheckResponse 冲突检查结果：逐条可读的违规描述
type ConflictCheckResponse struct {
	Conflicts []string `json:"conflicts"`
}

// [自证通过] internal/dto/assignment.go
