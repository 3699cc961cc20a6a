package decision

import (
	"strings"
	"testing"

	"riptide/internal/analysis/indicator"
)

func swingLongSet() SnapshotSet {
	return SnapshotSet{
		Label1d: {
			TrendState: TrendBull,
			RSI:        map[int]float64{14: 65},
		},
		Label4h: {
			TrendState:  TrendBull,
			RSI:         map[int]float64{14: 40, 5: 35, 9: 38, 75: 60, 100: 58, 200: 55},
			Prev:        map[int]float64{14: 38},
			RSI14Rising: true,
		},
		Label1h: {
			TrendState:  TrendBull,
			RSI:         map[int]float64{14: 55},
			RSI14Rising: true,
		},
	}
}

func TestEvaluateSwingLong(t *testing.T) {
	set := swingLongSet()
	v := Evaluate("BTCUSDT", set, indicator.Divergence{Type: indicator.DivergenceNone})
	if !v.Valid || v.Signal != SignalSwingLong {
		t.Fatalf("应产出 swing_long, 实际 valid=%v signal=%s", v.Valid, v.Signal)
	}
	if v.SwingBias != BiasLongOnly {
		t.Fatalf("swing bias 应为 long_only, 实际=%s", v.SwingBias)
	}
	if v.Regime != RegimeBull {
		t.Fatalf("4h 长周期读数全部高于 50 应为 bull_regime, 实际=%s", v.Regime)
	}
	if v.Confidence != 55 {
		t.Fatalf("置信度应为 25+15+10+5=55, 实际=%d", v.Confidence)
	}
	if !v.Active {
		t.Fatalf("置信度 55 应达到生效门槛")
	}
	wantFirst := "✓ swing bias long_only (1d & 4h bull)"
	if len(v.Reasons) == 0 || v.Reasons[0] != wantFirst {
		t.Fatalf("首条理由应为 %q, 实际=%v", wantFirst, v.Reasons)
	}
	if !strings.Contains(strings.Join(v.Reasons, "\n"), "reset zone [35,45]") {
		t.Fatalf("理由应记录回撤区命中, 实际=%v", v.Reasons)
	}
}

func TestEvaluateSwingLongDivergenceUpgrade(t *testing.T) {
	set := swingLongSet()
	v := Evaluate("BTCUSDT", set, indicator.Divergence{Type: indicator.DivergenceBullish})
	if !v.Valid {
		t.Fatalf("看涨背离不应否决信号")
	}
	last := v.Reasons[len(v.Reasons)-1]
	if last != "⭐ A+ bullish divergence confirmed" {
		t.Fatalf("末条理由应为 A+ 背离确认, 实际=%q", last)
	}
}

func TestEvaluateWatching(t *testing.T) {
	set := swingLongSet()
	set[Label1h] = &TimeframeSnapshot{
		TrendState: TrendBull,
		RSI:        map[int]float64{14: 45},
	}
	v := Evaluate("BTCUSDT", set, indicator.Divergence{Type: indicator.DivergenceNone})
	if v.Valid || v.Active {
		t.Fatalf("1h 未确认时不应产出有效信号, 实际 valid=%v active=%v", v.Valid, v.Active)
	}
	if !v.Watching {
		t.Fatalf("方向门槛已过、后续失败应标记 watching")
	}
	last := v.Reasons[len(v.Reasons)-1]
	if last != "✗ 1h RSI14 must be ≥50 and rising" {
		t.Fatalf("应保留首个失败检查的理由, 实际=%q", last)
	}
}

func TestEvaluateScalpLong(t *testing.T) {
	set := SnapshotSet{
		Label1h: {
			TrendState: TrendBull,
			RSI:        map[int]float64{14: 52},
		},
		Label5m: {
			RSI:          map[int]float64{14: 40, 5: 20, 9: 28},
			StretchState: StretchOversold,
			BullFlip:     true,
			RSI14Rising:  true,
		},
		Label15m: {
			RSI: map[int]float64{14: 50},
		},
	}
	v := Evaluate("ETHUSDT", set, indicator.Divergence{Type: indicator.DivergenceNone})
	if !v.Valid || v.Signal != SignalScalpLong {
		t.Fatalf("应产出 scalp_long, 实际 valid=%v signal=%s", v.Valid, v.Signal)
	}
	if v.SwingBias != BiasNoTrade || v.ScalpBias != BiasLongOnly {
		t.Fatalf("偏向应为 swing=no_trade scalp=long_only, 实际=%s/%s", v.SwingBias, v.ScalpBias)
	}
	if v.Confidence != 55 {
		t.Fatalf("置信度应为 0+30+15+10=55, 实际=%d", v.Confidence)
	}
	if v.Regime != RegimeTransition {
		t.Fatalf("无长周期读数应为 transition, 实际=%s", v.Regime)
	}
}

func TestEvaluateScalpLongCountertrend(t *testing.T) {
	set := SnapshotSet{
		Label1h: {TrendState: TrendBull},
		Label5m: {
			RSI:          map[int]float64{14: 40, 5: 20, 9: 28},
			StretchState: StretchOversold,
			BullFlip:     true,
			RSI14Rising:  true,
		},
	}
	v := Evaluate("ETHUSDT", set, indicator.Divergence{Type: indicator.DivergenceNone})
	if !v.Valid {
		t.Fatalf("15m 反向只警告不否决")
	}
	last := v.Reasons[len(v.Reasons)-1]
	if !strings.Contains(last, "countertrend scalp") {
		t.Fatalf("应追加逆势警告, 实际=%q", last)
	}
}

func TestEvaluateScalpShort(t *testing.T) {
	set := SnapshotSet{
		Label1h: {TrendState: TrendBear},
		Label5m: {
			RSI:          map[int]float64{14: 60, 5: 80, 9: 72},
			StretchState: StretchOverbought,
			BearFlip:     true,
			RSI14Falling: true,
		},
		Label15m: {RSI: map[int]float64{14: 50}},
	}
	v := Evaluate("SOLUSDT", set, indicator.Divergence{Type: indicator.DivergenceNone})
	if !v.Valid || v.Signal != SignalScalpShort {
		t.Fatalf("应产出 scalp_short, 实际 valid=%v signal=%s", v.Valid, v.Signal)
	}
}

func TestEvaluateNoTrade(t *testing.T) {
	set := SnapshotSet{
		Label1d: {TrendState: TrendNeutral},
		Label4h: {TrendState: TrendNeutral},
		Label1h: {TrendState: TrendNeutral},
	}
	v := Evaluate("BTCUSDT", set, indicator.Divergence{Type: indicator.DivergenceNone})
	if v.Valid || v.Watching {
		t.Fatalf("全中性不应有信号或观察标记, 实际 valid=%v watching=%v", v.Valid, v.Watching)
	}
	if v.Signal != SignalNone {
		t.Fatalf("无信号应为空串, 实际=%q", v.Signal)
	}
}
