package backtest

import (
	"time"

	"riptide/internal/analysis/indicator"
)

const (
	SignalOversold   = "oversold"
	SignalOverbought = "overbought"
)

// Params 回测参数，零值字段回落到默认。
type Params struct {
	Period     int     `json:"period"`
	Oversold   float64 `json:"oversold"`
	Overbought float64 `json:"overbought"`
}

// merged 用 base 填补未指定的字段。
func (p Params) merged(base Params) Params {
	if p.Period <= 0 {
		p.Period = base.Period
	}
	if p.Oversold <= 0 {
		p.Oversold = base.Oversold
	}
	if p.Overbought <= 0 {
		p.Overbought = base.Overbought
	}
	return p
}

func (p Params) withDefaults() Params {
	out := p
	if out.Period <= 0 {
		out.Period = 14
	}
	if out.Oversold <= 0 {
		out.Oversold = 30
	}
	if out.Overbought <= 0 {
		out.Overbought = 70
	}
	return out
}

// Horizon 命名的前瞻区间及其折算后的 K 线根数。
type Horizon struct {
	Name    string `json:"name"`
	Candles int    `json:"candles"`
}

// SignalRecord 单次阈值触发及其各 horizon 的前瞻收益（百分比）。
type SignalRecord struct {
	Index      int                `json:"index"`
	Type       string             `json:"type"`
	RSI        float64            `json:"rsi"`
	EntryPrice float64            `json:"entry_price"`
	Returns    map[string]float64 `json:"returns"`
}

// DirectionStats 按信号方向聚合的胜率与平均收益。
type DirectionStats struct {
	Signals    int                `json:"signals"`
	WinRates   map[string]float64 `json:"win_rates"`
	AvgReturns map[string]float64 `json:"avg_returns"`
}

// Result 一次完整回测的输出。
type Result struct {
	Symbol     string          `json:"symbol"`
	Timeframe  string          `json:"timeframe"`
	Params     Params          `json:"params"`
	Candles    int             `json:"candles"`
	Horizons   []Horizon       `json:"horizons"`
	Signals    []SignalRecord  `json:"signals,omitempty"`
	Oversold   DirectionStats  `json:"oversold"`
	Overbought DirectionStats  `json:"overbought"`
}

// Run replays RSI threshold crossings against forward returns at 1h/4h/24h
// horizons. Oversold entries win when price is higher at the horizon,
// overbought entries when it is lower. Insufficient history yields an empty
// result, never an error.
func Run(symbol, label string, closes []float64, params Params) (Result, error) {
	params = params.withDefaults()
	tf, err := ParseTimeframe(label)
	if err != nil {
		return Result{}, err
	}
	horizons := []Horizon{
		{Name: "1h", Candles: tf.HorizonCandles(time.Hour)},
		{Name: "4h", Candles: tf.HorizonCandles(4 * time.Hour)},
		{Name: "24h", Candles: tf.HorizonCandles(24 * time.Hour)},
	}
	res := Result{
		Symbol:     symbol,
		Timeframe:  label,
		Params:     params,
		Candles:    len(closes),
		Horizons:   horizons,
		Oversold:   newDirectionStats(horizons),
		Overbought: newDirectionStats(horizons),
	}
	series := indicator.RSISeries(closes, params.Period)
	if len(series) == 0 {
		return res, nil
	}
	maxHorizon := 0
	for _, h := range horizons {
		if h.Candles > maxHorizon {
			maxHorizon = h.Candles
		}
	}

	for idx := params.Period; idx < len(closes)-maxHorizon; idx++ {
		val := series[idx-params.Period]
		var sigType string
		switch {
		case val < params.Oversold:
			sigType = SignalOversold
		case val > params.Overbought:
			sigType = SignalOverbought
		default:
			continue
		}
		entry := closes[idx]
		if entry == 0 {
			continue
		}
		rec := SignalRecord{
			Index:      idx,
			Type:       sigType,
			RSI:        val,
			EntryPrice: entry,
			Returns:    make(map[string]float64, len(horizons)),
		}
		for _, h := range horizons {
			rec.Returns[h.Name] = (closes[idx+h.Candles] - entry) / entry * 100
		}
		res.Signals = append(res.Signals, rec)
	}

	aggregate(&res.Oversold, res.Signals, SignalOversold, horizons)
	aggregate(&res.Overbought, res.Signals, SignalOverbought, horizons)
	return res, nil
}

func newDirectionStats(horizons []Horizon) DirectionStats {
	stats := DirectionStats{
		WinRates:   make(map[string]float64, len(horizons)),
		AvgReturns: make(map[string]float64, len(horizons)),
	}
	return stats
}

func aggregate(stats *DirectionStats, signals []SignalRecord, sigType string, horizons []Horizon) {
	for _, h := range horizons {
		wins, count := 0, 0
		sum := 0.0
		for _, rec := range signals {
			if rec.Type != sigType {
				continue
			}
			ret := rec.Returns[h.Name]
			sum += ret
			count++
			if (sigType == SignalOversold && ret > 0) || (sigType == SignalOverbought && ret < 0) {
				wins++
			}
		}
		stats.Signals = count
		if count > 0 {
			stats.WinRates[h.Name] = 100 * float64(wins) / float64(count)
			stats.AvgReturns[h.Name] = sum / float64(count)
		}
	}
}
