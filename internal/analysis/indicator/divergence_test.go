package indicator

import "testing"

func TestDetectDivergenceBearish(t *testing.T) {
	// 价格两个峰 (idx 8=15, idx 20=16) 走高，振荡器对应峰 (80, 70) 走低。
	prices := []float64{
		10, 10.6, 11.2, 11.9, 12.5, 13.1, 13.8, 14.4, 15,
		14, 13, 12, 11, 10, 9,
		10.2, 11.4, 12.6, 13.8, 15.0, 16,
		15.4, 14.8, 14.2, 13.7, 13.1, 12.5, 11.9, 11.4, 11,
	}
	osc := []float64{
		50, 53.75, 57.5, 61.25, 65, 68.75, 72.5, 76.25, 80,
		73, 66, 60, 53, 46, 40,
		45, 50, 55, 60, 65, 70,
		67, 64, 61, 58, 55, 52, 49, 47, 45,
	}
	div := DetectDivergence(prices, osc, len(prices))
	if div.Type != DivergenceBearish {
		t.Fatalf("应检出看跌背离, 实际=%s (%s)", div.Type, div.Description)
	}
}

func TestDetectDivergenceBullish(t *testing.T) {
	// 价格两个谷 (idx 8=10, idx 20=9) 走低，振荡器对应谷 (20, 30) 走高。
	prices := []float64{
		15, 14.4, 13.8, 13.1, 12.5, 11.9, 11.2, 10.6, 10,
		10.7, 11.4, 12.1, 12.8, 13.4, 14,
		13.2, 12.4, 11.5, 10.7, 9.9, 9,
		9.4, 9.9, 10.4, 10.9, 11.4, 11.9, 12.3, 12.7, 13,
	}
	osc := []float64{
		60, 55, 50, 45, 40, 35, 30, 25, 20,
		26, 32, 38, 44, 50, 55,
		51, 47, 43, 39, 35, 30,
		32, 34, 37, 39, 41, 44, 46, 48, 50,
	}
	div := DetectDivergence(prices, osc, len(prices))
	if div.Type != DivergenceBullish {
		t.Fatalf("应检出看涨背离, 实际=%s (%s)", div.Type, div.Description)
	}
}

func TestDetectDivergenceNone(t *testing.T) {
	prices := make([]float64, 30)
	osc := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)
		osc[i] = 50 + float64(i)*0.5
	}
	if div := DetectDivergence(prices, osc, 30); div.Type != DivergenceNone {
		t.Fatalf("单边行情不应检出背离, 实际=%s", div.Type)
	}
	if div := DetectDivergence(prices[:5], osc[:5], 30); div.Type != DivergenceNone {
		t.Fatalf("历史不足应返回 none, 实际=%s", div.Type)
	}
}

func TestDetectDivergenceAlignment(t *testing.T) {
	// 振荡器峰与价格峰相距超过 5 根时不配对。
	prices := []float64{
		10, 10.6, 11.2, 11.9, 12.5, 13.1, 13.8, 14.4, 15,
		14, 13, 12, 11, 10, 9,
		10.2, 11.4, 12.6, 13.8, 15.0, 16,
		15.4, 14.8, 14.2, 13.7, 13.1, 12.5, 11.9, 11.4, 11,
	}
	// 第二个振荡器峰前移到 idx 12，与价格峰 idx 20 相距 8。
	osc := []float64{
		50, 53.75, 57.5, 61.25, 65, 68.75, 72.5, 76.25, 80,
		60, 62, 66, 70, 60, 50,
		45, 42, 40, 38, 36, 34,
		32, 30, 28, 26, 24, 22, 20, 18, 16,
	}
	if div := DetectDivergence(prices, osc, len(prices)); div.Type == DivergenceBearish {
		t.Fatalf("对齐窗口外的峰不应配对成看跌背离")
	}
}
