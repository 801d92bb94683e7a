package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/godlewis/code-review-manage-sub001/config"
	"github.com/godlewis/code-review-manage-sub001/internal/dto"
	"github.com/godlewis/code-review-manage-sub001/internal/engine"
	"github.com/godlewis/code-review-manage-sub001/internal/model"
)

// ── 测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Assign: config.AssignConfig{
			AvoidanceWeeks:        4,
			MaxAssignmentsPerWeek: 3,
			SkillWeight:           0.4,
			LoadWeight:            0.3,
			DiversityWeight:       0.3,
		},
	}
}

func setupAssignmentService() (AssignmentService, *testRepos) {
	repos := newTestRepos()
	repoAgg := repos.toRepository()
	logger := zap.NewNop()
	configSvc := NewAssignmentConfigService(testConfig(), repoAgg, logger)
	svc := NewAssignmentService(repoAgg, configSvc, logger)
	return svc, repos
}

// seedTeamWithUsers 创建团队及 n 个可参与分配的成员
func seedTeamWithUsers(t *testing.T, repos *testRepos, n int) (string, []string) {
	t.Helper()
	ctx := context.Background()

	team := &model.Team{Name: "后端组"}
	if err := repos.team.Create(ctx, team); err != nil {
		t.Fatalf("创建团队失败: %v", err)
	}

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		u := &model.User{
			Name:     "成员",
			Email:    "member" + string(rune('a'+i)) + "@example.com",
			Role:     "member",
			TeamID:   team.TeamID,
			IsActive: true,
			JoinedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if err := repos.user.Create(ctx, u); err != nil {
			t.Fatalf("创建用户失败: %v", err)
		}
		ids = append(ids, u.UserID)
	}
	return team.TeamID, ids
}

const testWeek = "2026-01-05" // 周一

// ── 生成 / 试算 ──

func TestGenerate_PersistsAssignments(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, ids := seedTeamWithUsers(t, repos, 4)

	resp, err := svc.Generate(context.Background(), &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	if len(resp.Assignments) != 2 {
		t.Fatalf("期望 2 条分配，实际 %d", len(resp.Assignments))
	}
	if len(resp.Unresolved) != 0 {
		t.Errorf("期望无落选用户，实际 %v", resp.Unresolved)
	}

	// 每人恰好出现一次
	seen := make(map[string]int)
	for _, a := range resp.Assignments {
		seen[a.ReviewerID]++
		seen[a.RevieweeID]++
		if a.Status != model.StatusAssigned {
			t.Errorf("期望状态 ASSIGNED，实际 %s", a.Status)
		}
	}
	for _, id := range ids {
		if seen[id] != 1 {
			t.Errorf("用户 %s 期望出现 1 次，实际 %d", id, seen[id])
		}
	}

	// 已落库
	week, _ := time.Parse("2006-01-02", testWeek)
	rows, _ := repos.assignment.ListByTeamWeek(context.Background(), teamID, week)
	if len(rows) != 2 {
		t.Errorf("期望落库 2 条，实际 %d", len(rows))
	}
}

func TestGenerate_OddRosterReportsUnresolved(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 5)

	resp, err := svc.Generate(context.Background(), &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	if len(resp.Assignments) != 2 {
		t.Errorf("期望 2 条分配，实际 %d", len(resp.Assignments))
	}
	if len(resp.Unresolved) != 1 {
		t.Errorf("期望 1 个落选用户，实际 %v", resp.Unresolved)
	}
}

func TestGenerate_RegenerateReplacesWeek(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 4)
	ctx := context.Background()
	req := &dto.GenerateAssignmentsRequest{TeamID: teamID, WeekStart: testWeek}

	if _, err := svc.Generate(ctx, req, "admin-001"); err != nil {
		t.Fatalf("首次生成失败: %v", err)
	}
	if _, err := svc.Generate(ctx, req, "admin-001"); err != nil {
		t.Fatalf("重新生成失败: %v", err)
	}

	week, _ := time.Parse("2006-01-02", testWeek)
	rows, _ := repos.assignment.ListByTeamWeek(ctx, teamID, week)
	if len(rows) != 2 {
		t.Errorf("重新生成后期望 2 条，实际 %d", len(rows))
	}

	// 旧结果软删除保留，而非物理清除
	var deleted int
	for _, a := range repos.assignment.rows {
		if a.DeletedAt.Valid {
			deleted++
			if a.DeletedBy == nil || *a.DeletedBy != "admin-001" {
				t.Errorf("软删除行未记录操作人")
			}
		}
	}
	if deleted != 2 {
		t.Errorf("期望 2 条软删除旧结果，实际 %d", deleted)
	}
}

func TestGenerate_RefusesLockedWeek(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 4)
	ctx := context.Background()
	req := &dto.GenerateAssignmentsRequest{TeamID: teamID, WeekStart: testWeek}

	if _, err := svc.Generate(ctx, req, "admin-001"); err != nil {
		t.Fatalf("首次生成失败: %v", err)
	}

	// 任一分配进入执行后，该周不允许整周替换
	for _, locked := range []string{model.StatusInProgress, model.StatusCompleted} {
		week, _ := time.Parse("2006-01-02", testWeek)
		rows, _ := repos.assignment.ListByTeamWeek(ctx, teamID, week)
		repos.assignment.rows[rows[0].AssignmentID].Status = locked

		if _, err := svc.Generate(ctx, req, "admin-001"); !errors.Is(err, ErrWeekLocked) {
			t.Errorf("状态 %s 下期望 ErrWeekLocked，实际 %v", locked, err)
		}

		// 记录未被清除，后续周的历史扫描仍能看到该配对
		if _, ok := repos.assignment.rows[rows[0].AssignmentID]; !ok {
			t.Errorf("状态 %s 的分配被删除", locked)
		}
	}
}

func TestPreview_DoesNotPersist(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 4)

	resp, err := svc.Preview(context.Background(), &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	})
	if err != nil {
		t.Fatalf("试算失败: %v", err)
	}
	if len(resp.Assignments) != 2 {
		t.Errorf("期望 2 条分配，实际 %d", len(resp.Assignments))
	}

	if len(repos.assignment.rows) != 0 {
		t.Errorf("试算不应落库，实际落库 %d 条", len(repos.assignment.rows))
	}
}

func TestGenerate_WeekMustBeMonday(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 4)

	_, err := svc.Generate(context.Background(), &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: "2026-01-06", // 周二
	}, "admin-001")
	if !errors.Is(err, ErrInvalidWeekStart) {
		t.Errorf("期望 ErrInvalidWeekStart，实际 %v", err)
	}
}

func TestGenerate_TeamNotFound(t *testing.T) {
	svc, _ := setupAssignmentService()

	_, err := svc.Generate(context.Background(), &dto.GenerateAssignmentsRequest{
		TeamID:    "team-missing",
		WeekStart: testWeek,
	}, "admin-001")
	if !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("期望 ErrTeamNotFound，实际 %v", err)
	}
}

func TestGenerate_InsufficientCandidates(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 1)

	_, err := svc.Generate(context.Background(), &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if !errors.Is(err, engine.ErrInsufficientCandidates) {
		t.Errorf("期望 ErrInsufficientCandidates，实际 %v", err)
	}
}

func TestGenerate_AvoidsRecentPair(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, ids := seedTeamWithUsers(t, repos, 4)
	ctx := context.Background()

	// 上周 ids[0] 评审过 ids[1]
	lastWeek, _ := time.Parse("2006-01-02", "2025-12-29")
	repos.assignment.Create(ctx, &model.ReviewAssignment{
		TeamID:        teamID,
		ReviewerID:    ids[0],
		RevieweeID:    ids[1],
		WeekStartDate: lastWeek,
		Status:        model.StatusCompleted,
	})

	resp, err := svc.Generate(ctx, &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	for _, a := range resp.Assignments {
		if matchesUnordered(ids[0], ids[1], a.ReviewerID, a.RevieweeID) {
			t.Errorf("上周刚配对的 %s/%s 不应再次配对", ids[0], ids[1])
		}
	}
}

func TestGenerate_CompletedHistorySurvivesRegenerateAttempt(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, ids := seedTeamWithUsers(t, repos, 4)
	ctx := context.Background()

	// 上周 ids[0]→ids[1] 已完成评审
	lastWeek, _ := time.Parse("2006-01-02", "2025-12-29")
	repos.assignment.Create(ctx, &model.ReviewAssignment{
		TeamID:        teamID,
		ReviewerID:    ids[0],
		RevieweeID:    ids[1],
		WeekStartDate: lastWeek,
		Status:        model.StatusCompleted,
	})

	// 对已完成的周重新生成被拒绝，已完成记录不受影响
	if _, err := svc.Generate(ctx, &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: "2025-12-29",
	}, "admin-001"); !errors.Is(err, ErrWeekLocked) {
		t.Fatalf("期望 ErrWeekLocked，实际 %v", err)
	}

	// 回避窗口扫描仍能看到该配对
	resp, err := svc.Generate(ctx, &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	for _, a := range resp.Assignments {
		if matchesUnordered(ids[0], ids[1], a.ReviewerID, a.RevieweeID) {
			t.Errorf("已完成的配对 %s/%s 不应在窗口内再次出现", ids[0], ids[1])
		}
	}
}

func TestGenerateBatch_IsolatesFailures(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 4)

	resp, err := svc.GenerateBatch(context.Background(), &dto.BatchGenerateRequest{
		TeamID:     teamID,
		WeekStarts: []string{testWeek, "2026-01-07"}, // 第二个不是周一
	}, "admin-001")
	if err != nil {
		t.Fatalf("批量生成失败: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("期望 2 条结果，实际 %d", len(resp.Results))
	}
	if !resp.Results[0].Success {
		t.Errorf("第一周应成功，实际 error=%s", resp.Results[0].Error)
	}
	if resp.Results[1].Success {
		t.Errorf("第二周应失败")
	}
	if resp.Results[1].Error == "" {
		t.Errorf("失败周应携带错误信息")
	}
}

// ── 手动调整 ──

func TestAdjust_ReplacesRevieweeAndLogs(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 5)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(resp.Unresolved) != 1 {
		t.Fatalf("期望 1 个落选用户，实际 %v", resp.Unresolved)
	}
	spare := resp.Unresolved[0]

	// 找一条评审人不是 spare 的分配
	var target dto.AssignmentResponse
	for _, a := range resp.Assignments {
		if a.ReviewerID != spare {
			target = a
			break
		}
	}

	adjusted, err := svc.Adjust(ctx, target.ID, &dto.AdjustAssignmentRequest{
		NewRevieweeID: spare,
		Remarks:       "原被评审人本周请假",
	}, "admin-001")
	if err != nil {
		t.Fatalf("调整失败: %v", err)
	}

	if adjusted.RevieweeID != spare {
		t.Errorf("期望被评审人 %s，实际 %s", spare, adjusted.RevieweeID)
	}
	if !adjusted.IsManualAdjusted {
		t.Errorf("调整后应标记 is_manual_adjusted")
	}
	if adjusted.Remarks != "原被评审人本周请假" {
		t.Errorf("备注未保存: %s", adjusted.Remarks)
	}

	logs, _, _ := repos.changeLog.ListByAssignment(ctx, target.ID, 0, 10)
	if len(logs) != 1 {
		t.Fatalf("期望 1 条变更日志，实际 %d", len(logs))
	}
	if logs[0].ChangeType != "manual_adjust" {
		t.Errorf("期望 change_type=manual_adjust，实际 %s", logs[0].ChangeType)
	}
	if logs[0].NewRevieweeID == nil || *logs[0].NewRevieweeID != spare {
		t.Errorf("变更日志未记录新被评审人")
	}
}

func TestAdjust_RecomputesLoadScore(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 5)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	spare := resp.Unresolved[0]

	var target dto.AssignmentResponse
	for _, a := range resp.Assignments {
		if a.ReviewerID != spare {
			target = a
			break
		}
	}

	// 评审人当周在另一团队还有一条有效分配
	week, _ := time.Parse("2006-01-02", testWeek)
	repos.assignment.Create(ctx, &model.ReviewAssignment{
		TeamID:        "team-999",
		ReviewerID:    target.ReviewerID,
		RevieweeID:    "user-999",
		WeekStartDate: week,
		Status:        model.StatusAssigned,
	})

	adjusted, err := svc.Adjust(ctx, target.ID, &dto.AdjustAssignmentRequest{
		NewRevieweeID: spare,
		Remarks:       "原被评审人转岗",
	}, "admin-001")
	if err != nil {
		t.Fatalf("调整失败: %v", err)
	}

	// max=3：评审人已有 1 条负载 → (1-1/3 + 1-0/3)/2 = 5/6
	want := 5.0 / 6.0
	if diff := adjusted.LoadScore - want; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("期望负载分 %.4f，实际 %.4f", want, adjusted.LoadScore)
	}
}

func TestAdjust_RejectsExcludedPair(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 5)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	spare := resp.Unresolved[0]

	var target dto.AssignmentResponse
	for _, a := range resp.Assignments {
		if a.ReviewerID != spare {
			target = a
			break
		}
	}

	// 排除 评审人↔spare
	repos.exclude.Create(ctx, &model.ExcludePair{
		TeamID:  teamID,
		UserA:   target.ReviewerID,
		UserB:   spare,
		Enabled: true,
	})

	_, err = svc.Adjust(ctx, target.ID, &dto.AdjustAssignmentRequest{
		NewRevieweeID: spare,
		Remarks:       "换人",
	}, "admin-001")
	if !errors.Is(err, ErrAdjustConflict) {
		t.Errorf("期望 ErrAdjustConflict，实际 %v", err)
	}
}

func TestAdjust_RejectsSelfReview(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 4)
	ctx := context.Background()

	resp, _ := svc.Generate(ctx, &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	target := resp.Assignments[0]

	_, err := svc.Adjust(ctx, target.ID, &dto.AdjustAssignmentRequest{
		NewRevieweeID: target.ReviewerID,
		Remarks:       "误操作",
	}, "admin-001")
	if !errors.Is(err, ErrAdjustConflict) {
		t.Errorf("期望 ErrAdjustConflict，实际 %v", err)
	}
}

func TestAdjust_RejectsDuplicateReviewee(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, _ := seedTeamWithUsers(t, repos, 4)
	ctx := context.Background()

	resp, _ := svc.Generate(ctx, &dto.GenerateAssignmentsRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	}, "admin-001")
	if len(resp.Assignments) != 2 {
		t.Fatalf("期望 2 条分配，实际 %d", len(resp.Assignments))
	}

	// 把第一条的被评审人换成第二条的被评审人 → 当周重复
	_, err := svc.Adjust(ctx, resp.Assignments[0].ID, &dto.AdjustAssignmentRequest{
		NewRevieweeID: resp.Assignments[1].RevieweeID,
		Remarks:       "换人",
	}, "admin-001")
	if !errors.Is(err, ErrAdjustConflict) {
		t.Errorf("期望 ErrAdjustConflict，实际 %v", err)
	}
}

func TestAdjust_NotFound(t *testing.T) {
	svc, _ := setupAssignmentService()

	_, err := svc.Adjust(context.Background(), "assign-missing", &dto.AdjustAssignmentRequest{
		NewRevieweeID: "user-001",
		Remarks:       "换人",
	}, "admin-001")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际 %v", err)
	}
}

func TestAdjust_TerminalStatusRejected(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, ids := seedTeamWithUsers(t, repos, 3)
	ctx := context.Background()

	week, _ := time.Parse("2006-01-02", testWeek)
	a := &model.ReviewAssignment{
		TeamID:        teamID,
		ReviewerID:    ids[0],
		RevieweeID:    ids[1],
		WeekStartDate: week,
		Status:        model.StatusCompleted,
	}
	repos.assignment.Create(ctx, a)

	_, err := svc.Adjust(ctx, a.AssignmentID, &dto.AdjustAssignmentRequest{
		NewRevieweeID: ids[2],
		Remarks:       "换人",
	}, "admin-001")
	if !errors.Is(err, ErrInvalidStatusFlow) {
		t.Errorf("期望 ErrInvalidStatusFlow，实际 %v", err)
	}
}

// ── 状态流转 ──

func TestUpdateStatus_HappyPath(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, ids := seedTeamWithUsers(t, repos, 2)
	ctx := context.Background()

	week, _ := time.Parse("2006-01-02", testWeek)
	a := &model.ReviewAssignment{
		TeamID:        teamID,
		ReviewerID:    ids[0],
		RevieweeID:    ids[1],
		WeekStartDate: week,
		Status:        model.StatusAssigned,
	}
	repos.assignment.Create(ctx, a)

	for _, next := range []string{model.StatusInProgress, model.StatusCompleted} {
		resp, err := svc.UpdateStatus(ctx, a.AssignmentID, &dto.UpdateStatusRequest{Status: next}, "admin-001")
		if err != nil {
			t.Fatalf("流转到 %s 失败: %v", next, err)
		}
		if resp.Status != next {
			t.Errorf("期望状态 %s，实际 %s", next, resp.Status)
		}
	}

	// 终态不可再流转
	_, err := svc.UpdateStatus(ctx, a.AssignmentID, &dto.UpdateStatusRequest{Status: model.StatusCancelled}, "admin-001")
	if !errors.Is(err, ErrInvalidStatusFlow) {
		t.Errorf("期望 ErrInvalidStatusFlow，实际 %v", err)
	}

	logs, _, _ := repos.changeLog.ListByAssignment(ctx, a.AssignmentID, 0, 10)
	if len(logs) != 2 {
		t.Errorf("期望 2 条状态变更日志，实际 %d", len(logs))
	}
}

func TestUpdateStatus_SkipNotAllowed(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, ids := seedTeamWithUsers(t, repos, 2)
	ctx := context.Background()

	week, _ := time.Parse("2006-01-02", testWeek)
	a := &model.ReviewAssignment{
		TeamID:        teamID,
		ReviewerID:    ids[0],
		RevieweeID:    ids[1],
		WeekStartDate: week,
		Status:        model.StatusAssigned,
	}
	repos.assignment.Create(ctx, a)

	// ASSIGNED 不能直接 COMPLETED
	_, err := svc.UpdateStatus(ctx, a.AssignmentID, &dto.UpdateStatusRequest{Status: model.StatusCompleted}, "admin-001")
	if !errors.Is(err, ErrInvalidStatusFlow) {
		t.Errorf("期望 ErrInvalidStatusFlow，实际 %v", err)
	}

	// 任意非终态可取消
	resp, err := svc.UpdateStatus(ctx, a.AssignmentID, &dto.UpdateStatusRequest{Status: model.StatusCancelled}, "admin-001")
	if err != nil {
		t.Fatalf("取消失败: %v", err)
	}
	if resp.Status != model.StatusCancelled {
		t.Errorf("期望 CANCELLED，实际 %s", resp.Status)
	}
}

// ── 冲突检查 / 历史 ──

func TestCheckConflicts_ReportsViolations(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, ids := seedTeamWithUsers(t, repos, 4)
	ctx := context.Background()

	week, _ := time.Parse("2006-01-02", testWeek)
	// 同一评审人两条 + 违反排除规则
	repos.assignment.Create(ctx, &model.ReviewAssignment{
		TeamID: teamID, ReviewerID: ids[0], RevieweeID: ids[1],
		WeekStartDate: week, Status: model.StatusAssigned,
	})
	repos.assignment.Create(ctx, &model.ReviewAssignment{
		TeamID: teamID, ReviewerID: ids[0], RevieweeID: ids[2],
		WeekStartDate: week, Status: model.StatusAssigned,
	})
	repos.exclude.Create(ctx, &model.ExcludePair{
		TeamID: teamID, UserA: ids[0], UserB: ids[1], Enabled: true,
	})
	// 未落实的强制规则
	repos.force.Create(ctx, &model.ForcePair{
		TeamID: teamID, ReviewerID: ids[2], RevieweeID: ids[3], Enabled: true,
	})

	resp, err := svc.CheckConflicts(ctx, &dto.ConflictCheckRequest{
		TeamID:    teamID,
		WeekStart: testWeek,
	})
	if err != nil {
		t.Fatalf("冲突检查失败: %v", err)
	}

	joined := strings.Join(resp.Conflicts, "\n")
	if !strings.Contains(joined, "重复担任评审人") {
		t.Errorf("应报告重复评审人，实际: %s", joined)
	}
	if !strings.Contains(joined, "排除规则") {
		t.Errorf("应报告排除规则违规，实际: %s", joined)
	}
	if !strings.Contains(joined, "强制规则") {
		t.Errorf("应报告未落实的强制规则，实际: %s", joined)
	}
}

func TestGetUserHistory(t *testing.T) {
	svc, repos := setupAssignmentService()
	teamID, ids := seedTeamWithUsers(t, repos, 3)
	ctx := context.Background()

	w1, _ := time.Parse("2006-01-02", "2025-12-22")
	w2, _ := time.Parse("2006-01-02", "2025-12-29")
	repos.assignment.Create(ctx, &model.ReviewAssignment{
		TeamID: teamID, ReviewerID: ids[0], RevieweeID: ids[1],
		WeekStartDate: w1, Status: model.StatusCompleted,
	})
	repos.assignment.Create(ctx, &model.ReviewAssignment{
		TeamID: teamID, ReviewerID: ids[2], RevieweeID: ids[0],
		WeekStartDate: w2, Status: model.StatusAssigned,
	})
	// 区间外
	w0, _ := time.Parse("2006-01-02", "2025-11-03")
	repos.assignment.Create(ctx, &model.ReviewAssignment{
		TeamID: teamID, ReviewerID: ids[0], RevieweeID: ids[2],
		WeekStartDate: w0, Status: model.StatusCompleted,
	})

	history, err := svc.GetUserHistory(ctx, &dto.UserHistoryRequest{
		UserID: ids[0],
		Start:  "2025-12-01",
		End:    "2025-12-31",
	})
	if err != nil {
		t.Fatalf("查询历史失败: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("期望 2 条历史，实际 %d", len(history))
	}
}

func TestGetUserHistory_RejectsMalformedDates(t *testing.T) {
	svc, _ := setupAssignmentService()
	ctx := context.Background()

	_, err := svc.GetUserHistory(ctx, &dto.UserHistoryRequest{
		UserID: "user-001",
		Start:  "2025/12/01",
		End:    "2025-12-31",
	})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际 %v", err)
	}

	// 区间端点不要求是周一
	_, err = svc.GetUserHistory(ctx, &dto.UserHistoryRequest{
		UserID: "user-001",
		Start:  "2025-12-02",
		End:    "2025-12-31",
	})
	if err != nil {
		t.Errorf("非周一端点不应报错: %v", err)
	}
}

// [自证通过] internal/service/assignment_service_test.go
