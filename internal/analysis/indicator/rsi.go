package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RSISeries computes Wilder-smoothed RSI over closes, oldest first, one value
// per candle past the warm-up window. Inputs shorter than period+1 yield nil.
// A zero smoothed loss reads 100, so a flat series is maximally overbought
// rather than the 0 talib emits for an all-zero window.
func RSISeries(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period+1 {
		return nil
	}
	raw := talib.Rsi(closes, period)
	out := make([]float64, 0, len(raw)-period)
	lossSeen := false
	for i := 1; i < len(closes); i++ {
		if closes[i] < closes[i-1] {
			lossSeen = true
		}
		if i < period {
			continue
		}
		v := raw[i]
		// Wilder 平滑下 avgLoss 为 0 当且仅当至今没有出现过下跌。
		if !lossSeen {
			v = 100
		}
		if !isFinite(v) {
			continue
		}
		out = append(out, clamp(v, 0, 100))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// RSI returns the latest reading; ok=false means insufficient history.
func RSI(closes []float64, period int) (float64, bool) {
	series := RSISeries(closes, period)
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// RSILast2 returns the latest and previous readings from one series pass.
// Either pointer is nil when that value does not exist.
func RSILast2(closes []float64, period int) (cur, prev *float64) {
	series := RSISeries(closes, period)
	if n := len(series); n > 0 {
		cur = &series[n-1]
		if n > 1 {
			prev = &series[n-2]
		}
	}
	return cur, prev
}

func clamp(val, minVal, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
