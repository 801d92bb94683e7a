package engine

import "sort"

// Roster 一次求解的候选人视图
// 按 UserID 升序固定索引（arena+index 模式），成本矩阵与求解器都基于该索引空间
type Roster struct {
	Users []Candidate
	index map[string]int
}

// Size 候选人数量
func (r *Roster) Size() int { return len(r.Users) }

// IndexOf 返回用户在本次求解中的索引；不存在返回 -1
func (r *Roster) IndexOf(userID string) int {
	if i, ok := r.index[userID]; ok {
		return i
	}
	return -1
}

// BuildRoster 建立候选人索引
// 调用方已过滤停用/暂停用户；reviewerOnly / revieweeOnly 不从集合中剔除，
// 只收窄角色掩码，保持矩阵方阵与索引簿记简单
func BuildRoster(candidates []Candidate) (*Roster, error) {
	if len(candidates) < 2 {
		return nil, ErrInsufficientCandidates
	}

	users := make([]Candidate, len(candidates))
	copy(users, candidates)
	sort.Slice(users, func(i, j int) bool {
		return users[i].UserID < users[j].UserID
	})

	index := make(map[string]int, len(users))
	for i, u := range users {
		index[u.UserID] = i
	}

	return &Roster{Users: users, index: index}, nil
}

// [自证通过] internal/engine/eligibility.go
