package confluence

import (
	"math"
	"testing"
)

func readingsOf(vals map[string]float64, period int) map[string]map[int]float64 {
	out := make(map[string]map[int]float64, len(vals))
	for label, v := range vals {
		out[label] = map[int]float64{period: v}
	}
	return out
}

func TestScoreBuyTier(t *testing.T) {
	readings := readingsOf(map[string]float64{"1h": 25, "4h": 28, "1d": 72}, 14)
	res := Score(readings, 14, []string{"1h", "4h", "1d"}, 0, 0)
	if res.ValidTimeframes != 3 {
		t.Fatalf("有效周期应为 3, 实际=%d", res.ValidTimeframes)
	}
	if res.OversoldCount != 2 || res.OverboughtCount != 1 {
		t.Fatalf("超卖/超买计数应为 2/1, 实际=%d/%d", res.OversoldCount, res.OverboughtCount)
	}
	if math.Abs(res.Score-33) > 1e-9 {
		t.Fatalf("评分应为 33, 实际=%.2f", res.Score)
	}
	if res.Signal != SignalBuy {
		t.Fatalf("2 个超卖周期应给出 buy, 实际=%s", res.Signal)
	}
}

func TestScoreStrongTiers(t *testing.T) {
	readings := readingsOf(map[string]float64{"5m": 20, "1h": 25, "4h": 28, "1d": 45}, 14)
	res := Score(readings, 14, []string{"5m", "1h", "4h", "1d"}, 0, 0)
	if res.Signal != SignalStrongBuy {
		t.Fatalf("3 个超卖周期应给出 strong_buy, 实际=%s", res.Signal)
	}

	readings = readingsOf(map[string]float64{"5m": 80, "1h": 75, "4h": 72, "1d": 55}, 14)
	res = Score(readings, 14, []string{"5m", "1h", "4h", "1d"}, 0, 0)
	if res.Signal != SignalStrongSell {
		t.Fatalf("3 个超买周期应给出 strong_sell, 实际=%s", res.Signal)
	}
	if math.Abs(res.Score+75) > 1e-9 {
		t.Fatalf("评分应为 -75, 实际=%.2f", res.Score)
	}
}

func TestScoreSkipsAbsentReadings(t *testing.T) {
	readings := map[string]map[int]float64{
		"1h": {14: 25},
		"4h": {9: 40}, // 周期不匹配，不计入
	}
	res := Score(readings, 14, []string{"1h", "4h", "1d"}, 0, 0)
	if res.ValidTimeframes != 1 {
		t.Fatalf("缺失读数不应计入有效周期, 实际=%d", res.ValidTimeframes)
	}
	if res.Signal != SignalNeutral {
		t.Fatalf("单个超卖周期应保持 neutral, 实际=%s", res.Signal)
	}
}

func TestScoreCustomThresholds(t *testing.T) {
	readings := readingsOf(map[string]float64{"1h": 28, "4h": 27, "1d": 72}, 14)
	tfs := []string{"1h", "4h", "1d"}
	// 默认阈值下 28/27 均超卖。
	if res := Score(readings, 14, tfs, 0, 0); res.OversoldCount != 2 {
		t.Fatalf("默认阈值应计 2 个超卖, 实际=%d", res.OversoldCount)
	}
	// 收紧到 25/75 后全部落回中区。
	res := Score(readings, 14, tfs, 25, 75)
	if res.OversoldCount != 0 || res.OverboughtCount != 0 {
		t.Fatalf("收紧阈值后不应有计数, 实际=%d/%d", res.OversoldCount, res.OverboughtCount)
	}
	if res.Signal != SignalNeutral {
		t.Fatalf("收紧阈值后应为 neutral, 实际=%s", res.Signal)
	}
}

func TestScoreEmpty(t *testing.T) {
	res := Score(nil, 14, []string{"1h"}, 0, 0)
	if res.ValidTimeframes != 0 || res.Score != 0 || res.Signal != SignalNeutral {
		t.Fatalf("空输入应为零值 neutral, 实际=%+v", res)
	}
}
