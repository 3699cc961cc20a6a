package confluence

import "math"

const (
	defaultOversold   = 30.0
	defaultOverbought = 70.0
)

type Signal string

const (
	SignalStrongBuy  Signal = "strong_buy"
	SignalBuy        Signal = "buy"
	SignalNeutral    Signal = "neutral"
	SignalSell       Signal = "sell"
	SignalStrongSell Signal = "strong_sell"
)

type Result struct {
	OversoldCount   int     `json:"oversold_count"`
	OverboughtCount int     `json:"overbought_count"`
	ValidTimeframes int     `json:"valid_timeframes"`
	Score           float64 `json:"score"`
	Signal          Signal  `json:"signal"`
}

// Score aggregates one oscillator period across an ordered timeframe list.
// readings maps timeframe label -> period -> latest value; absent readings do
// not count as valid timeframes. Oversold (<oversold) and overbought
// (>overbought) are mutually exclusive per timeframe; non-positive thresholds
// fall back to 30/70. Buy-side tiers are checked before sell-side ones.
func Score(readings map[string]map[int]float64, period int, timeframes []string, oversold, overbought float64) Result {
	if oversold <= 0 {
		oversold = defaultOversold
	}
	if overbought <= 0 {
		overbought = defaultOverbought
	}
	res := Result{Signal: SignalNeutral}
	for _, label := range timeframes {
		perPeriod, ok := readings[label]
		if !ok {
			continue
		}
		val, ok := perPeriod[period]
		if !ok {
			continue
		}
		res.ValidTimeframes++
		switch {
		case val < oversold:
			res.OversoldCount++
		case val > overbought:
			res.OverboughtCount++
		}
	}
	if res.ValidTimeframes > 0 {
		res.Score = math.Round(100 * float64(res.OversoldCount-res.OverboughtCount) / float64(res.ValidTimeframes))
	}
	switch {
	case res.OversoldCount >= 3:
		res.Signal = SignalStrongBuy
	case res.OversoldCount >= 2:
		res.Signal = SignalBuy
	case res.OverboughtCount >= 3:
		res.Signal = SignalStrongSell
	case res.OverboughtCount >= 2:
		res.Signal = SignalSell
	}
	return res
}
