package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/godlewis/code-review-manage-sub001/internal/model"
	"github.com/godlewis/code-review-manage-sub001/internal/repository"
	pkgerrors "github.com/godlewis/code-review-manage-sub001/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	if user.Version == 0 {
		user.Version = 1
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByTeam(_ context.Context, teamID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.TeamID == teamID {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockUserRepo) ListActiveByTeam(_ context.Context, teamID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.TeamID == teamID && u.IsActive && !u.PauseAssignment {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockUserRepo) List(_ context.Context, teamID string, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if teamID == "" || u.TeamID == teamID {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	existing, ok := m.users[user.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if existing.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams map[string]*model.Team
	seq   int
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{teams: make(map[string]*model.Team)}
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	if team.TeamID == "" {
		m.seq++
		team.TeamID = fmt.Sprintf("team-%03d", m.seq)
	}
	if team.Version == 0 {
		team.Version = 1
	}
	m.teams[team.TeamID] = team
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	if t, ok := m.teams[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) List(_ context.Context, _, _ int) ([]model.Team, int64, error) {
	var result []model.Team
	for _, t := range m.teams {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TeamID < result[j].TeamID })
	return result, int64(len(result)), nil
}

func (m *mockTeamRepo) Update(_ context.Context, team *model.Team) error {
	existing, ok := m.teams[team.TeamID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if existing.Version != team.Version {
		return pkgerrors.ErrOptimisticLock
	}
	team.Version++
	m.teams[team.TeamID] = team
	return nil
}

func (m *mockTeamRepo) Delete(_ context.Context, id string) error {
	delete(m.teams, id)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	rows map[string]*model.ReviewAssignment
	seq  int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{rows: make(map[string]*model.ReviewAssignment)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.ReviewAssignment) error {
	if a.AssignmentID == "" {
		m.seq++
		a.AssignmentID = fmt.Sprintf("assign-%03d", m.seq)
	}
	if a.Version == 0 {
		a.Version = 1
	}
	m.rows[a.AssignmentID] = a
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.ReviewAssignment, error) {
	if a, ok := m.rows[id]; ok && !a.DeletedAt.Valid {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByTeamWeek(_ context.Context, teamID string, week time.Time) ([]model.ReviewAssignment, error) {
	var result []model.ReviewAssignment
	for _, a := range m.rows {
		if !a.DeletedAt.Valid && a.TeamID == teamID && a.WeekStartDate.Equal(week) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReviewerID < result[j].ReviewerID })
	return result, nil
}

func (m *mockAssignmentRepo) ListByTeamRange(_ context.Context, teamID string, start, end time.Time) ([]model.ReviewAssignment, error) {
	var result []model.ReviewAssignment
	for _, a := range m.rows {
		if !a.DeletedAt.Valid && a.TeamID == teamID && !a.WeekStartDate.Before(start) && !a.WeekStartDate.After(end) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByUserRange(_ context.Context, userID string, start, end time.Time) ([]model.ReviewAssignment, error) {
	var result []model.ReviewAssignment
	for _, a := range m.rows {
		if a.DeletedAt.Valid {
			continue
		}
		if (a.ReviewerID == userID || a.RevieweeID == userID) &&
			!a.WeekStartDate.Before(start) && !a.WeekStartDate.After(end) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WeekStartDate.After(result[j].WeekStartDate) })
	return result, nil
}

func (m *mockAssignmentRepo) ListActiveByUsersWeek(_ context.Context, userIDs []string, week time.Time) ([]model.ReviewAssignment, error) {
	inSet := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		inSet[id] = true
	}
	var result []model.ReviewAssignment
	for _, a := range m.rows {
		if a.DeletedAt.Valid || !a.WeekStartDate.Equal(week) || a.Status == model.StatusCancelled {
			continue
		}
		if inSet[a.ReviewerID] || inSet[a.RevieweeID] {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ReplaceForTeamWeek(_ context.Context, teamID string, week time.Time, deletedBy string, assignments []model.ReviewAssignment) error {
	for _, a := range m.rows {
		if !a.DeletedAt.Valid && a.TeamID == teamID && a.WeekStartDate.Equal(week) {
			a.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
			if deletedBy != "" {
				by := deletedBy
				a.DeletedBy = &by
			}
		}
	}
	for i := range assignments {
		a := assignments[i]
		if a.AssignmentID == "" {
			m.seq++
			a.AssignmentID = fmt.Sprintf("assign-%03d", m.seq)
		}
		if a.Version == 0 {
			a.Version = 1
		}
		m.rows[a.AssignmentID] = &a
		assignments[i] = a
	}
	return nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.ReviewAssignment) error {
	existing, ok := m.rows[a.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if existing.Version != a.Version {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version++
	m.rows[a.AssignmentID] = a
	return nil
}

// ── Mock AssignmentConfigRepository ──

type mockConfigRepo struct {
	configs []*model.AssignmentConfig
	seq     int
}

func newMockConfigRepo() *mockConfigRepo {
	return &mockConfigRepo{}
}

func (m *mockConfigRepo) Create(_ context.Context, c *model.AssignmentConfig) error {
	if c.ConfigID == "" {
		m.seq++
		c.ConfigID = fmt.Sprintf("config-%03d", m.seq)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	m.configs = append(m.configs, c)
	return nil
}

func (m *mockConfigRepo) GetGlobal(_ context.Context) (*model.AssignmentConfig, error) {
	for _, c := range m.configs {
		if c.Scope == model.ScopeGlobal && c.Enabled {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConfigRepo) GetByTeam(_ context.Context, teamID string) (*model.AssignmentConfig, error) {
	for _, c := range m.configs {
		if c.Scope == model.ScopeTeam && c.Enabled && c.TeamID != nil && *c.TeamID == teamID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConfigRepo) GetByUser(_ context.Context, userID string) (*model.AssignmentConfig, error) {
	for _, c := range m.configs {
		if c.Scope == model.ScopeUser && c.Enabled && c.UserID != nil && *c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConfigRepo) Update(_ context.Context, c *model.AssignmentConfig) error {
	for i, existing := range m.configs {
		if existing.ConfigID == c.ConfigID {
			if existing.Version != c.Version {
				return pkgerrors.ErrOptimisticLock
			}
			c.Version++
			m.configs[i] = c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock ExcludePairRepository ──

type mockExcludePairRepo struct {
	pairs map[string]*model.ExcludePair
	seq   int
}

func newMockExcludePairRepo() *mockExcludePairRepo {
	return &mockExcludePairRepo{pairs: make(map[string]*model.ExcludePair)}
}

func (m *mockExcludePairRepo) Create(_ context.Context, p *model.ExcludePair) error {
	if p.PairID == "" {
		m.seq++
		p.PairID = fmt.Sprintf("exclude-%03d", m.seq)
	}
	m.pairs[p.PairID] = p
	return nil
}

func (m *mockExcludePairRepo) GetByID(_ context.Context, id string) (*model.ExcludePair, error) {
	if p, ok := m.pairs[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExcludePairRepo) ListEnabledByTeam(_ context.Context, teamID string) ([]model.ExcludePair, error) {
	var result []model.ExcludePair
	for _, p := range m.pairs {
		if p.TeamID == teamID && p.Enabled {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockExcludePairRepo) ListByTeam(_ context.Context, teamID string) ([]model.ExcludePair, error) {
	var result []model.ExcludePair
	for _, p := range m.pairs {
		if p.TeamID == teamID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockExcludePairRepo) Delete(_ context.Context, id string) error {
	delete(m.pairs, id)
	return nil
}

// ── Mock ForcePairRepository ──

type mockForcePairRepo struct {
	pairs map[string]*model.ForcePair
	seq   int
}

func newMockForcePairRepo() *mockForcePairRepo {
	return &mockForcePairRepo{pairs: make(map[string]*model.ForcePair)}
}

func (m *mockForcePairRepo) Create(_ context.Context, p *model.ForcePair) error {
	if p.PairID == "" {
		m.seq++
		p.PairID = fmt.Sprintf("force-%03d", m.seq)
	}
	m.pairs[p.PairID] = p
	return nil
}

func (m *mockForcePairRepo) GetByID(_ context.Context, id string) (*model.ForcePair, error) {
	if p, ok := m.pairs[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockForcePairRepo) ListEnabledByTeam(_ context.Context, teamID string) ([]model.ForcePair, error) {
	var result []model.ForcePair
	for _, p := range m.pairs {
		if p.TeamID == teamID && p.Enabled {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Priority > result[j].Priority })
	return result, nil
}

func (m *mockForcePairRepo) ListByTeam(_ context.Context, teamID string) ([]model.ForcePair, error) {
	var result []model.ForcePair
	for _, p := range m.pairs {
		if p.TeamID == teamID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockForcePairRepo) Delete(_ context.Context, id string) error {
	delete(m.pairs, id)
	return nil
}

// ── Mock ChangeLogRepository ──

type mockChangeLogRepo struct {
	logs []model.AssignmentChangeLog
	seq  int
}

func newMockChangeLogRepo() *mockChangeLogRepo {
	return &mockChangeLogRepo{}
}

func (m *mockChangeLogRepo) Create(_ context.Context, log *model.AssignmentChangeLog) error {
	if log.ChangeLogID == "" {
		m.seq++
		log.ChangeLogID = fmt.Sprintf("log-%03d", m.seq)
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockChangeLogRepo) ListByAssignment(_ context.Context, assignmentID string, _, _ int) ([]model.AssignmentChangeLog, int64, error) {
	var result []model.AssignmentChangeLog
	for _, l := range m.logs {
		if l.AssignmentID == assignmentID {
			result = append(result, l)
		}
	}
	return result, int64(len(result)), nil
}

// ── 聚合 ──

// testRepos 聚合所有 mock repo，便于测试中直接 seed 与断言
type testRepos struct {
	user       *mockUserRepo
	team       *mockTeamRepo
	assignment *mockAssignmentRepo
	config     *mockConfigRepo
	exclude    *mockExcludePairRepo
	force      *mockForcePairRepo
	changeLog  *mockChangeLogRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		user:       newMockUserRepo(),
		team:       newMockTeamRepo(),
		assignment: newMockAssignmentRepo(),
		config:     newMockConfigRepo(),
		exclude:    newMockExcludePairRepo(),
		force:      newMockForcePairRepo(),
		changeLog:  newMockChangeLogRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:        r.user,
		Team:        r.team,
		Assignment:  r.assignment,
		Config:      r.config,
		ExcludePair: r.exclude,
		ForcePair:   r.force,
		ChangeLog:   r.changeLog,
	}
}

// [自证通过] internal/service/mock_repos_test.go
