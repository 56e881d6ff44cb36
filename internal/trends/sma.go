package trends

// SMA computes a simple moving average over a nullable series. A point gets
// a value only once the trailing window is fully inside the series; inside a
// full window the average is taken over the non-null points, so logging gaps
// thin the smoothing input instead of dragging the average toward zero. A
// window containing only nulls yields null.
func SMA(values []*float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 {
		return out
	}
	for i := range values {
		if i < window-1 {
			continue
		}
		var sum float64
		var n int
		for j := i - window + 1; j <= i; j++ {
			if values[j] != nil {
				sum += *values[j]
				n++
			}
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		out[i] = &avg
	}
	return out
}
