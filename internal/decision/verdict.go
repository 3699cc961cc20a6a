package decision

import (
	"fmt"
	"math"

	"riptide/internal/analysis/indicator"
)

// 信号生效的最低置信度。
const activeConfidenceFloor = 40

// Verdict 单轮扫描对单个交易对的最终裁决。Reasons 保持检查顺序。
type Verdict struct {
	Symbol     string     `json:"symbol"`
	Signal     SignalType `json:"signal,omitempty"`
	Valid      bool       `json:"valid"`
	Active     bool       `json:"active"`
	Watching   bool       `json:"watching"`
	Confidence int        `json:"confidence"`
	Reasons    []string   `json:"reasons,omitempty"`
	SwingBias  Bias       `json:"swing_bias"`
	ScalpBias  Bias       `json:"scalp_bias"`
	Regime     Regime     `json:"regime"`
}

// Evaluate 对一组快照依次执行 swing long/short、scalp long/short 检查，
// 优先级固定，首个通过的检查决定信号；均未通过且存在非 no_trade 方向许可时
// 标记为 watching 并保留首个越过方向门槛的检查理由。
func Evaluate(symbol string, set SnapshotSet, div indicator.Divergence) Verdict {
	swing := CalcSwingBias(set.trend(Label1d), set.trend(Label4h))
	scalp := CalcScalpBias(set.trend(Label1h), set.trend(Label4h))
	v := Verdict{
		Symbol:    symbol,
		SwingBias: swing,
		ScalpBias: scalp,
		Regime:    CalcRegime(RegimeReadings(set)),
	}

	checks := []struct {
		sig SignalType
		run func() (bool, []string)
	}{
		{SignalSwingLong, func() (bool, []string) { return checkSwingLong(set, swing, div) }},
		{SignalSwingShort, func() (bool, []string) { return checkSwingShort(set, swing, div) }},
		{SignalScalpLong, func() (bool, []string) { return checkScalpLong(set, scalp) }},
		{SignalScalpShort, func() (bool, []string) { return checkScalpShort(set, scalp) }},
	}
	for _, check := range checks {
		ok, reasons := check.run()
		if ok {
			v.Signal = check.sig
			v.Valid = true
			v.Reasons = reasons
			v.Confidence = calcConfidence(check.sig, set)
			v.Active = v.Confidence >= activeConfidenceFloor
			return v
		}
		// 方向门槛已过但后续步骤失败：记为观察中，保留首个此类检查的理由。
		if !v.Watching && len(reasons) > 1 {
			v.Watching = true
			v.Reasons = reasons
		}
	}
	return v
}

func checkSwingLong(set SnapshotSet, bias Bias, div indicator.Divergence) (bool, []string) {
	var reasons []string
	if bias != BiasLongOnly {
		return false, append(reasons, fmt.Sprintf("✗ swing bias is %s, need long_only", bias))
	}
	reasons = append(reasons, "✓ swing bias long_only (1d & 4h bull)")

	h4 := set.at(Label4h)
	r14 := h4.Reading(14)
	if r14 == nil {
		return false, append(reasons, "✗ 4h RSI14 unavailable")
	}
	rising := h4.RSI14Rising
	inReset := *r14 >= 35 && *r14 <= 45
	crossedUp := false
	if prev := h4.PrevReading(14); prev != nil {
		crossedUp = *prev <= 45 && *r14 > 45 && *r14 < 55 && rising
	}
	if !inReset && !crossedUp {
		return false, append(reasons, fmt.Sprintf("✗ 4h RSI14 %.1f outside reset zone [35,45] with no fresh cross above 45", *r14))
	}
	if inReset {
		reasons = append(reasons, fmt.Sprintf("✓ 4h RSI14 %.1f in reset zone [35,45]", *r14))
	} else {
		reasons = append(reasons, fmt.Sprintf("✓ 4h RSI14 %.1f just crossed above 45", *r14))
	}

	if !rising {
		return false, append(reasons, "✗ 4h RSI14 not rising")
	}
	reasons = append(reasons, "✓ 4h RSI14 rising")

	h1 := set.at(Label1h)
	h1r := h1.Reading(14)
	if h1r == nil || *h1r < 50 || !h1.RSI14Rising {
		return false, append(reasons, "✗ 1h RSI14 must be ≥50 and rising")
	}
	reasons = append(reasons, fmt.Sprintf("✓ 1h RSI14 %.1f ≥50 and rising", *h1r))

	if div.Type == indicator.DivergenceBullish {
		reasons = append(reasons, "⭐ A+ bullish divergence confirmed")
	}
	return true, reasons
}

func checkSwingShort(set SnapshotSet, bias Bias, div indicator.Divergence) (bool, []string) {
	var reasons []string
	if bias != BiasShortOnly {
		return false, append(reasons, fmt.Sprintf("✗ swing bias is %s, need short_only", bias))
	}
	reasons = append(reasons, "✓ swing bias short_only (1d & 4h bear)")

	h4 := set.at(Label4h)
	r14 := h4.Reading(14)
	if r14 == nil {
		return false, append(reasons, "✗ 4h RSI14 unavailable")
	}
	falling := h4.RSI14Falling
	inReset := *r14 >= 55 && *r14 <= 65
	crossedDown := false
	if prev := h4.PrevReading(14); prev != nil {
		crossedDown = *prev >= 55 && *r14 < 55 && *r14 > 45 && falling
	}
	if !inReset && !crossedDown {
		return false, append(reasons, fmt.Sprintf("✗ 4h RSI14 %.1f outside reset zone [55,65] with no fresh cross below 55", *r14))
	}
	if inReset {
		reasons = append(reasons, fmt.Sprintf("✓ 4h RSI14 %.1f in reset zone [55,65]", *r14))
	} else {
		reasons = append(reasons, fmt.Sprintf("✓ 4h RSI14 %.1f just crossed below 55", *r14))
	}

	if !falling {
		return false, append(reasons, "✗ 4h RSI14 not falling")
	}
	reasons = append(reasons, "✓ 4h RSI14 falling")

	h1 := set.at(Label1h)
	h1r := h1.Reading(14)
	if h1r == nil || *h1r > 50 || !h1.RSI14Falling {
		return false, append(reasons, "✗ 1h RSI14 must be ≤50 and falling")
	}
	reasons = append(reasons, fmt.Sprintf("✓ 1h RSI14 %.1f ≤50 and falling", *h1r))

	if div.Type == indicator.DivergenceBearish {
		reasons = append(reasons, "⭐ A+ bearish divergence confirmed")
	}
	return true, reasons
}

func checkScalpLong(set SnapshotSet, bias Bias) (bool, []string) {
	var reasons []string
	if bias != BiasLongOnly {
		return false, append(reasons, fmt.Sprintf("✗ scalp bias is %s, need long_only", bias))
	}
	reasons = append(reasons, "✓ scalp bias long_only")

	m5 := set.at(Label5m)
	if m5 == nil || m5.StretchState != StretchOversold {
		return false, append(reasons, "✗ 5m not in oversold stretch")
	}
	reasons = append(reasons, "✓ 5m stretch oversold")

	m1 := set.at(Label1m)
	switch {
	case m1 != nil && m1.BullFlip:
		reasons = append(reasons, "✓ bull flip on 1m")
	case m5.BullFlip:
		reasons = append(reasons, "✓ bull flip on 5m")
	default:
		return false, append(reasons, "✗ no bull flip on 1m or 5m")
	}

	// 软性确认：15m 反向不否决信号，只追加警告。
	if r := set.reading(Label15m, 14); r == nil || *r < 45 {
		reasons = append(reasons, "⚠ 15m RSI14 below 45 — countertrend scalp")
	} else {
		reasons = append(reasons, fmt.Sprintf("✓ 15m RSI14 %.1f ≥45", *r))
	}
	return true, reasons
}

func checkScalpShort(set SnapshotSet, bias Bias) (bool, []string) {
	var reasons []string
	if bias != BiasShortOnly {
		return false, append(reasons, fmt.Sprintf("✗ scalp bias is %s, need short_only", bias))
	}
	reasons = append(reasons, "✓ scalp bias short_only")

	m5 := set.at(Label5m)
	if m5 == nil || m5.StretchState != StretchOverbought {
		return false, append(reasons, "✗ 5m not in overbought stretch")
	}
	reasons = append(reasons, "✓ 5m stretch overbought")

	m1 := set.at(Label1m)
	switch {
	case m1 != nil && m1.BearFlip:
		reasons = append(reasons, "✓ bear flip on 1m")
	case m5.BearFlip:
		reasons = append(reasons, "✓ bear flip on 5m")
	default:
		return false, append(reasons, "✗ no bear flip on 1m or 5m")
	}

	if r := set.reading(Label15m, 14); r == nil || *r > 55 {
		reasons = append(reasons, "⚠ 15m RSI14 above 55 — countertrend scalp")
	} else {
		reasons = append(reasons, fmt.Sprintf("✓ 15m RSI14 %.1f ≤55", *r))
	}
	return true, reasons
}

// calcConfidence 三段打分：方向强度 0–40、入场质量 0–30、触发质量 0–30。
// 入场质量取触发周期（swing 用 4h，scalp 用 5m）的快周期读数。
func calcConfidence(sig SignalType, set SnapshotSet) int {
	long := sig == SignalSwingLong || sig == SignalScalpLong
	swing := sig == SignalSwingLong || sig == SignalSwingShort

	score := 0.0
	bias := 0.0
	if d := set.reading(Label1d, 14); d != nil {
		bias += math.Abs(*d - 50)
	}
	if h := set.reading(Label4h, 14); h != nil {
		bias += math.Abs(*h - 50)
	}
	score += math.Min(40, bias)

	trigger := Label5m
	if swing {
		trigger = Label4h
	}
	r5 := set.reading(trigger, 5)
	r9 := set.reading(trigger, 9)
	if r5 != nil && r9 != nil {
		if long {
			score += math.Min(30, math.Max(0, 50-math.Min(*r5, *r9)))
		} else {
			score += math.Min(30, math.Max(0, math.Max(*r5, *r9)-50))
		}
	}

	snap := set.at(trigger)
	if snap != nil {
		flip := snap.BullFlip
		confirmed := snap.RSI14Rising
		if !long {
			flip = snap.BearFlip
			confirmed = snap.RSI14Falling
		}
		if !swing && !flip {
			// scalp 触发可能发生在 1m。
			if m1 := set.at(Label1m); m1 != nil {
				if long {
					flip = m1.BullFlip
				} else {
					flip = m1.BearFlip
				}
			}
		}
		if flip {
			score += 15
		}
		if confirmed {
			score += 10
		}
	}
	if swing {
		if h1 := set.reading(Label1h, 14); h1 != nil && ((long && *h1 >= 50) || (!long && *h1 <= 50)) {
			score += 5
		}
	}

	return int(math.Round(math.Max(0, math.Min(100, score))))
}
