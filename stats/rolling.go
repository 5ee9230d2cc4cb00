package stats

import (
	"errors"
	"math"
	"time"
)

var ErrTimeLenMismatch = errors.New("time and values have different lengths")

// RollingCentered computes the centered rolling mean and sample standard deviation (ddof=1) where
// both ends of the window are inclusive.
//
// Time windows cover [t-span/2, t+span/2] and need a single observation for the mean. Sample
// windows of size n are offset by (n-1)/2, extended by one sample on the left and need n
// observations. NaN values are skipped and never count as observations.
func RollingCentered(t []time.Time, y []float64, w Window) ([]float64, []float64, error) {
	if w.IsTime() && len(t) != len(y) {
		return nil, nil, ErrTimeLenMismatch
	}
	if !w.IsTime() && w.Samples <= 0 {
		return nil, nil, ErrInvalidWindow
	}

	n := len(y)
	mean := make([]float64, n)
	std := make([]float64, n)

	var bounds func(i int) (int, int)
	minPeriods := 1
	if w.IsTime() {
		half := w.Span / 2
		start, end := 0, 0
		bounds = func(i int) (int, int) {
			lo := t[i].Add(-half)
			hi := t[i].Add(half)
			for start < i && t[start].Before(lo) {
				start++
			}
			if end < i+1 {
				end = i + 1
			}
			for end < n && !t[end].After(hi) {
				end++
			}
			return start, end
		}
	} else {
		offset := (w.Samples - 1) / 2
		minPeriods = w.Samples
		bounds = func(i int) (int, int) {
			end := i + 1 + offset
			start := end - w.Samples - 1
			return max(start, 0), min(end, n)
		}
	}

	for i := 0; i < n; i++ {
		start, end := bounds(i)
		mean[i], std[i] = windowMoments(y[start:end], minPeriods)
	}
	return mean, std, nil
}

// windowMoments returns the mean and sample standard deviation of the non NaN values.
func windowMoments(y []float64, minPeriods int) (float64, float64) {
	var cnt int
	var sum float64
	for _, val := range y {
		if math.IsNaN(val) {
			continue
		}
		cnt++
		sum += val
	}
	if cnt == 0 || cnt < minPeriods {
		return math.NaN(), math.NaN()
	}
	mean := sum / float64(cnt)
	if cnt < 2 {
		return mean, math.NaN()
	}

	var ss float64
	for _, val := range y {
		if math.IsNaN(val) {
			continue
		}
		d := val - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(cnt-1))
}

// ZScores returns (y-mean)/std per position. Undefined scores are NaN.
func ZScores(y, mean, std []float64) []float64 {
	z := make([]float64, len(y))
	for i := range y {
		if std[i] == 0 || math.IsNaN(std[i]) {
			z[i] = math.NaN()
			continue
		}
		z[i] = (y[i] - mean[i]) / std[i]
	}
	return z
}
