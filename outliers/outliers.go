// Package outliers replaces anomalous samples of a time series by the centered rolling mean.
package outliers

import (
	"math"
	"time"

	"github.com/Open-EO/FuseTS/stats"
)

// Filter replaces every value whose centered rolling z-score exceeds threshold in magnitude by the
// rolling mean at that point. Positions where the z-score is undefined keep their value.
func Filter(t []time.Time, y []float64, window stats.Window, threshold float64) ([]float32, error) {
	return FilterWithOptions(t, y, &Options{
		Window:    window,
		Threshold: threshold,
		Method:    MethodZScore,
	})
}

// FilterWithOptions runs the filter with the configured method.
func FilterWithOptions(t []time.Time, y []float64, opt *Options) ([]float32, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	mean, std, err := stats.RollingCentered(t, y, opt.Window)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(y))
	copy(out, y)

	switch opt.Method {
	case MethodTukey:
		for pass := 0; pass < opt.Tukey.NumPasses; pass++ {
			idx := stats.DetectOutliers(out, opt.Tukey.LowerPercentile, opt.Tukey.UpperPercentile, opt.Tukey.TukeyFactor)
			var replaced int
			for _, i := range idx {
				if math.IsNaN(mean[i]) || out[i] == mean[i] {
					continue
				}
				out[i] = mean[i]
				replaced++
			}
			if replaced == 0 {
				break
			}
		}
	default:
		z := stats.ZScores(y, mean, std)
		for i, score := range z {
			if math.IsNaN(score) {
				continue
			}
			if math.Abs(score) > opt.Threshold {
				out[i] = mean[i]
			}
		}
	}

	res := make([]float32, len(out))
	for i, val := range out {
		res[i] = float32(val)
	}
	return res, nil
}
