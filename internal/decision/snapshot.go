package decision

import (
	"riptide/internal/analysis/indicator"
)

// TimeframeSnapshot 聚合单个交易对在单个 timeframe 上的 RSI 读数与派生状态。
// 每轮扫描重建，构建后不再修改。
type TimeframeSnapshot struct {
	Symbol string
	Label  string

	// RSI 仅包含历史足够、计算成功的周期。
	RSI  map[int]float64
	Prev map[int]float64

	TrendState   TrendState
	StretchState StretchState
	BullFlip     bool
	BearFlip     bool
	RSI14Rising  bool
	RSI14Falling bool
}

// Reading 返回指定周期的读数指针，缺失时为 nil。
func (s *TimeframeSnapshot) Reading(period int) *float64 {
	if s == nil {
		return nil
	}
	if v, ok := s.RSI[period]; ok {
		return &v
	}
	return nil
}

// PrevReading 返回指定周期的上一根读数，缺失时为 nil。
func (s *TimeframeSnapshot) PrevReading(period int) *float64 {
	if s == nil {
		return nil
	}
	if v, ok := s.Prev[period]; ok {
		return &v
	}
	return nil
}

// BuildSnapshot 基于收盘价序列计算一组标准周期的最新/上一根 RSI，并派生
// 趋势、超买超卖与金叉死叉状态。closes 按时间升序。
func BuildSnapshot(symbol, label string, closes []float64, periods []int) *TimeframeSnapshot {
	if len(periods) == 0 {
		periods = StandardPeriods
	}
	snap := &TimeframeSnapshot{
		Symbol: symbol,
		Label:  label,
		RSI:    make(map[int]float64, len(periods)),
		Prev:   make(map[int]float64, 3),
	}
	for _, p := range periods {
		cur, prev := indicator.RSILast2(closes, p)
		if cur != nil {
			snap.RSI[p] = *cur
		}
		// 只有快周期与 14 需要上一根读数（flip 与 rising/falling 判定）。
		if prev != nil && (p == 5 || p == 9 || p == 14) {
			snap.Prev[p] = *prev
		}
	}
	snap.derive()
	return snap
}

func (s *TimeframeSnapshot) derive() {
	cur14 := s.Reading(14)
	prev14 := s.PrevReading(14)
	if cur14 != nil && prev14 != nil {
		s.RSI14Rising = *cur14 > *prev14
		s.RSI14Falling = *cur14 < *prev14
	}
	s.TrendState = CalcTrendState(cur14, s.Reading(50), s.Reading(200))
	s.StretchState = CalcStretchState(s.Reading(5), s.Reading(9))
	s.BullFlip = DetectBullFlip(s.Reading(5), s.Reading(9), s.PrevReading(5), s.PrevReading(9), s.RSI14Rising)
	s.BearFlip = DetectBearFlip(s.Reading(5), s.Reading(9), s.PrevReading(5), s.PrevReading(9), s.RSI14Falling)
}

// SnapshotSet 以 timeframe 标签索引一轮扫描的全部快照。
type SnapshotSet map[string]*TimeframeSnapshot

func (set SnapshotSet) at(label string) *TimeframeSnapshot {
	if set == nil {
		return nil
	}
	return set[label]
}

func (set SnapshotSet) reading(label string, period int) *float64 {
	return set.at(label).Reading(period)
}

func (set SnapshotSet) trend(label string) TrendState {
	if snap := set.at(label); snap != nil {
		return snap.TrendState
	}
	return TrendNeutral
}

// Readings 导出 label -> period -> 读数 的嵌套表，供共振评分等下游使用。
func (set SnapshotSet) Readings() map[string]map[int]float64 {
	out := make(map[string]map[int]float64, len(set))
	for label, snap := range set {
		if snap == nil || len(snap.RSI) == 0 {
			continue
		}
		per := make(map[int]float64, len(snap.RSI))
		for p, v := range snap.RSI {
			per[p] = v
		}
		out[label] = per
	}
	return out
}
