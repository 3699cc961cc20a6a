package indicator

// LocalExtremes returns the ascending indices i (lookback <= i < len-lookback)
// whose value equals the max (isMax) or min of the window [i-lookback, i+lookback].
// Ties qualify, so flat tops may produce adjacent indices.
func LocalExtremes(series []float64, isMax bool, lookback int) []int {
	if lookback < 1 || len(series) < 2*lookback+1 {
		return nil
	}
	var out []int
	for i := lookback; i < len(series)-lookback; i++ {
		if isWindowExtreme(series, i, lookback, isMax) {
			out = append(out, i)
		}
	}
	return out
}

func isWindowExtreme(values []float64, idx, prd int, isMax bool) bool {
	center := values[idx]
	if !isFinite(center) {
		return false
	}
	for i := idx - prd; i <= idx+prd; i++ {
		if i == idx {
			continue
		}
		v := values[i]
		if !isFinite(v) {
			return false
		}
		if isMax && v > center {
			return false
		}
		if !isMax && v < center {
			return false
		}
	}
	return true
}

// collapseRuns keeps only the last index of each run of adjacent extremes, so
// a flat top counts as a single pivot.
func collapseRuns(indices []int) []int {
	if len(indices) == 0 {
		return nil
	}
	out := make([]int, 0, len(indices))
	for i, idx := range indices {
		if i+1 < len(indices) && indices[i+1] == idx+1 {
			continue
		}
		out = append(out, idx)
	}
	return out
}
