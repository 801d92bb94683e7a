package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/godlewis/code-review-manage-sub001/internal/dto"
	"github.com/godlewis/code-review-manage-sub001/internal/model"
	"github.com/godlewis/code-review-manage-sub001/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrConflictingRoleFlags = errors.New("reviewer_only 与 reviewee_only 不可同时开启")
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	Get(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	UpdateFlags(ctx context.Context, id string, req *dto.UpdateUserFlagsRequest, callerID string) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	// 校验团队存在
	if _, err := s.repo.Team.GetByID(ctx, req.TeamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询团队失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	joinedAt, _ := time.Parse("2006-01-02", req.JoinedAt)

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		TeamID:       req.TeamID,
		Skills:       model.StringArray(req.Skills),
		IsActive:     true,
		JoinedAt:     joinedAt,
	}
	user.CreatedBy = &callerID
	user.UpdatedBy = &callerID

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.TeamID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resps = append(resps, toUserResponse(&users[i]))
	}
	return resps, total, nil
}

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.TeamID != nil {
		if _, err := s.repo.Team.GetByID(ctx, *req.TeamID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, err
		}
		user.TeamID = *req.TeamID
	}
	if req.Skills != nil {
		user.Skills = model.StringArray(*req.Skills)
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// UpdateFlags 更新分配参与标记；reviewer_only 与 reviewee_only 互斥
func (s *userService) UpdateFlags(ctx context.Context, id string, req *dto.UpdateUserFlagsRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.PauseAssignment != nil {
		user.PauseAssignment = *req.PauseAssignment
	}
	if req.ReviewerOnly != nil {
		user.ReviewerOnly = *req.ReviewerOnly
	}
	if req.RevieweeOnly != nil {
		user.RevieweeOnly = *req.RevieweeOnly
	}
	if user.ReviewerOnly && user.RevieweeOnly {
		return nil, ErrConflictingRoleFlags
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户标记失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// toUserResponse 模型 → 脱敏响应
func toUserResponse(u *model.User) dto.UserResponse {
	var team *dto.TeamResponse
	if u.Team != nil {
		team = &dto.TeamResponse{
			ID:          u.Team.TeamID,
			Name:        u.Team.Name,
			Description: u.Team.Description,
		}
	}
	return dto.UserResponse{
		ID:              u.UserID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		Team:            team,
		Skills:          u.Skills,
		IsActive:        u.IsActive,
		PauseAssignment: u.PauseAssignment,
		ReviewerOnly:    u.ReviewerOnly,
		RevieweeOnly:    u.RevieweeOnly,
		JoinedAt:        u.JoinedAt.Format("2006-01-02"),
	}
}

// [自证通过] internal/service/user_service.go
