package window

// Trimmed is a valid-mode moving average: len(values)-window+1 entries, each the mean of a
// contiguous window. Inputs shorter than the window yield an empty result.
func Trimmed(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// Causal is a trailing moving average over min(i+1, window) samples, one output per input.
func Causal(values []float64, window int) []float64 {
	if window <= 0 {
		window = 1
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// PadLeft aligns a trimmed series to length n by prepending not-available markers.
func PadLeft(values []float64, n int) []*float64 {
	out := make([]*float64, max(n, len(values)))
	offset := len(out) - len(values)
	for i := range values {
		v := values[i]
		out[offset+i] = &v
	}
	return out
}
