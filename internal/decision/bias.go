package decision

// CalcSwingBias derives the swing direction permission from the daily and 4h
// trend states: both bull allows longs, both bear allows shorts, any
// disagreement blocks swing trades.
func CalcSwingBias(trendDaily, trend4h TrendState) Bias {
	switch {
	case trendDaily == TrendBull && trend4h == TrendBull:
		return BiasLongOnly
	case trendDaily == TrendBear && trend4h == TrendBear:
		return BiasShortOnly
	}
	return BiasNoTrade
}

// CalcScalpBias derives the scalp permission from the 1h and 4h trend states.
// The bull branch runs first, so a bull/bear split resolves to long_only.
func CalcScalpBias(trend1h, trend4h TrendState) Bias {
	switch {
	case trend1h == TrendBull || trend4h == TrendBull:
		return BiasLongOnly
	case trend1h == TrendBear || trend4h == TrendBear:
		return BiasShortOnly
	}
	return BiasNoTrade
}

// CalcRegime pools long-period readings (75/100/200 on two higher timeframes),
// skips absent ones and requires at least three present values; 70% of the
// pool above 50 is a bull regime, 70% below is a bear regime.
func CalcRegime(readings []*float64) Regime {
	present := make([]float64, 0, len(readings))
	for _, r := range readings {
		if r != nil {
			present = append(present, *r)
		}
	}
	if len(present) < 3 {
		return RegimeTransition
	}
	above, below := 0, 0
	for _, v := range present {
		switch {
		case v > 50:
			above++
		case v < 50:
			below++
		}
	}
	n := float64(len(present))
	switch {
	case float64(above)/n >= 0.7:
		return RegimeBull
	case float64(below)/n >= 0.7:
		return RegimeBear
	}
	return RegimeTransition
}

// RegimeReadings collects the six 75/100/200 readings from the 4h and daily
// snapshots in a stable order; missing values stay nil.
func RegimeReadings(set SnapshotSet) []*float64 {
	out := make([]*float64, 0, 6)
	for _, label := range []string{Label4h, Label1d} {
		for _, period := range []int{75, 100, 200} {
			out = append(out, set.reading(label, period))
		}
	}
	return out
}
