package peakvalley

// findPeaks returns the strict local maxima of f. A flat top is reported at its middle sample,
// rounding down, and the first and last samples are never peaks.
func findPeaks(f []float64) []int {
	var peaks []int
	n := len(f)
	for i := 1; i < n-1; i++ {
		if !(f[i-1] < f[i]) {
			continue
		}
		ahead := i + 1
		for ahead < n-1 && f[ahead] == f[i] {
			ahead++
		}
		if f[ahead] < f[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead
		}
	}
	return peaks
}

// findValleys returns the strict local minima of f.
func findValleys(f []float64) []int {
	neg := make([]float64, len(f))
	for i, val := range f {
		neg[i] = -val
	}
	return findPeaks(neg)
}
