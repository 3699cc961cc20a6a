package decision

// CalcTrendState classifies trend from the mid/long periods: bull needs RSI14
// and RSI50 both >=50 with RSI200 >=50 or absent; bear is the mirror. A
// missing 14 or 50 reading always degrades to neutral.
func CalcTrendState(rsi14, rsi50, rsi200 *float64) TrendState {
	if rsi14 == nil || rsi50 == nil {
		return TrendNeutral
	}
	switch {
	case *rsi14 >= 50 && *rsi50 >= 50 && (rsi200 == nil || *rsi200 >= 50):
		return TrendBull
	case *rsi14 <= 50 && *rsi50 <= 50 && (rsi200 == nil || *rsi200 <= 50):
		return TrendBear
	}
	return TrendNeutral
}

// CalcStretchState classifies short-period extremity. The oversold branch is
// evaluated first.
func CalcStretchState(rsi5, rsi9 *float64) StretchState {
	if (rsi5 != nil && *rsi5 <= 25) || (rsi9 != nil && *rsi9 <= 30) {
		return StretchOversold
	}
	if (rsi5 != nil && *rsi5 >= 75) || (rsi9 != nil && *rsi9 >= 70) {
		return StretchOverbought
	}
	return StretchNeutral
}

// DetectBullFlip reports an upward RSI5-over-RSI9 crossover confirmed by a
// rising RSI14. Any missing reading disables the flip.
func DetectBullFlip(rsi5, rsi9, rsi5Prev, rsi9Prev *float64, rsi14Rising bool) bool {
	if rsi5 == nil || rsi9 == nil || rsi5Prev == nil || rsi9Prev == nil {
		return false
	}
	return *rsi5Prev <= *rsi9Prev && *rsi5 > *rsi9 && rsi14Rising
}

// DetectBearFlip is the exact mirror of DetectBullFlip.
func DetectBearFlip(rsi5, rsi9, rsi5Prev, rsi9Prev *float64, rsi14Falling bool) bool {
	if rsi5 == nil || rsi9 == nil || rsi5Prev == nil || rsi9Prev == nil {
		return false
	}
	return *rsi5Prev >= *rsi9Prev && *rsi5 < *rsi9 && rsi14Falling
}
