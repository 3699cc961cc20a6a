package indicator

const (
	divergencePivotRadius = 3
	divergenceAlignBars   = 5
)

type DivergenceType string

const (
	DivergenceBullish DivergenceType = "bullish"
	DivergenceBearish DivergenceType = "bearish"
	DivergenceNone    DivergenceType = "none"
)

type Divergence struct {
	Type        DivergenceType `json:"type"`
	Description string         `json:"description,omitempty"`
}

// DetectDivergence classifies price-vs-oscillator divergence over the last
// lookback points of two equally indexed series. Bearish (rising price highs,
// falling oscillator highs) is checked before bullish; only one type is
// reported per call. Insufficient history yields DivergenceNone.
func DetectDivergence(prices, osc []float64, lookback int) Divergence {
	if lookback <= 0 || len(prices) < lookback || len(osc) < lookback {
		return Divergence{Type: DivergenceNone}
	}
	p := prices[len(prices)-lookback:]
	o := osc[len(osc)-lookback:]

	priceHighs := collapseRuns(LocalExtremes(p, true, divergencePivotRadius))
	oscHighs := collapseRuns(LocalExtremes(o, true, divergencePivotRadius))
	if divergesAt(p, o, priceHighs, oscHighs, true) {
		return Divergence{
			Type:        DivergenceBearish,
			Description: "price made a higher high while the oscillator made a lower high",
		}
	}

	priceLows := collapseRuns(LocalExtremes(p, false, divergencePivotRadius))
	oscLows := collapseRuns(LocalExtremes(o, false, divergencePivotRadius))
	if divergesAt(p, o, priceLows, oscLows, false) {
		return Divergence{
			Type:        DivergenceBullish,
			Description: "price made a lower low while the oscillator made a higher low",
		}
	}
	return Divergence{Type: DivergenceNone}
}

// divergesAt compares the two most recent extremes on each side: for the
// bearish case price highs must be strictly increasing while oscillator highs
// strictly decrease, with both pivot pairs aligned within divergenceAlignBars.
func divergesAt(p, o []float64, priceIdx, oscIdx []int, bearish bool) bool {
	if len(priceIdx) < 2 || len(oscIdx) < 2 {
		return false
	}
	p1, p2 := priceIdx[len(priceIdx)-2], priceIdx[len(priceIdx)-1]
	o1, o2 := oscIdx[len(oscIdx)-2], oscIdx[len(oscIdx)-1]
	if absInt(p2-o2) > divergenceAlignBars || absInt(p1-o1) > divergenceAlignBars {
		return false
	}
	if bearish {
		return p[p2] > p[p1] && o[o2] < o[o1]
	}
	return p[p2] < p[p1] && o[o2] > o[o1]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
