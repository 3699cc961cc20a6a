package decision

// 本文件定义多周期信号判定的通用枚举，供快照构建与裁决引擎使用。

// TrendState 单周期趋势方向。
type TrendState string

const (
	TrendBull    TrendState = "bull"
	TrendBear    TrendState = "bear"
	TrendNeutral TrendState = "neutral"
)

// StretchState 短周期超买超卖状态。
type StretchState string

const (
	StretchOversold   StretchState = "oversold"
	StretchOverbought StretchState = "overbought"
	StretchNeutral    StretchState = "neutral"
)

// Bias 跨周期方向许可。
type Bias string

const (
	BiasLongOnly  Bias = "long_only"
	BiasShortOnly Bias = "short_only"
	BiasNoTrade   Bias = "no_trade"
)

// Regime 大周期市场状态。
type Regime string

const (
	RegimeBull       Regime = "bull_regime"
	RegimeBear       Regime = "bear_regime"
	RegimeTransition Regime = "transition"
)

// SignalType 最终信号类别，空串表示无信号。
type SignalType string

const (
	SignalNone       SignalType = ""
	SignalSwingLong  SignalType = "swing_long"
	SignalSwingShort SignalType = "swing_short"
	SignalScalpLong  SignalType = "scalp_long"
	SignalScalpShort SignalType = "scalp_short"
)

// 标准周期与判定用到的 timeframe 标签。
var StandardPeriods = []int{5, 9, 14, 50, 75, 100, 200}

const (
	Label1m  = "1m"
	Label5m  = "5m"
	Label15m = "15m"
	Label1h  = "1h"
	Label4h  = "4h"
	Label1d  = "1d"
	Label1w  = "1w"
)
