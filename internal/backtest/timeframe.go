package backtest

import (
	"fmt"
	"time"

	"riptide/internal/market"
)

// Timeframe 描述回测数据的 K 线聚合粒度。
type Timeframe struct {
	Label    string
	Duration time.Duration
}

var knownTimeframes = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

func ParseTimeframe(label string) (Timeframe, error) {
	d, ok := knownTimeframes[label]
	if !ok {
		return Timeframe{}, fmt.Errorf("unknown timeframe %q", label)
	}
	return Timeframe{Label: label, Duration: d}, nil
}

// HorizonCandles 将前瞻时长换算为 K 线根数，向上取整且至少 1 根。
// 小于单根 K 线的 horizon 因此退化为下一根收盘，属于已知近似。
func (tf Timeframe) HorizonCandles(horizon time.Duration) int {
	if horizon <= 0 || tf.Duration <= 0 {
		return 1
	}
	n := int((horizon + tf.Duration - 1) / tf.Duration)
	if n < 1 {
		n = 1
	}
	return n
}

// ExpectedCandles 返回 [start, end] 毫秒区间内应有的 K 线根数。
func (tf Timeframe) ExpectedCandles(start, end int64) int64 {
	step := tf.Duration.Milliseconds()
	if step <= 0 || end < start {
		return 0
	}
	return (end-start)/step + 1
}

// MissingCandles 对比首尾时间戳推算的应有根数与实际根数，返回缺口大小。
// 完整或无法推算时为 0。
func (tf Timeframe) MissingCandles(candles []market.Candle) int64 {
	if len(candles) < 2 {
		return 0
	}
	expected := tf.ExpectedCandles(candles[0].OpenTime, candles[len(candles)-1].OpenTime)
	if gap := expected - int64(len(candles)); gap > 0 {
		return gap
	}
	return 0
}
