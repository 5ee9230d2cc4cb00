package outliers

import (
	"errors"
	"fmt"
	"math"

	"github.com/Open-EO/FuseTS/stats"
)

// Method selects how outliers are flagged. Flagged values are always replaced by the rolling mean.
type Method string

const (
	// MethodZScore flags values whose centered rolling z-score exceeds the threshold
	MethodZScore Method = "zscore"

	// MethodTukey flags values outside a percentile fence computed over the whole series
	MethodTukey Method = "tukey"
)

const DefaultThreshold = 3.0

var (
	ErrInvalidThreshold = errors.New("threshold must be positive")
	ErrUnknownMethod    = errors.New("unknown outlier method")
	ErrInvalidFence     = errors.New("tukey percentiles must satisfy 0 <= lower < upper <= 1")
)

// TukeyOptions configures the percentile fence
type TukeyOptions struct {
	NumPasses       int
	UpperPercentile float64
	LowerPercentile float64
	TukeyFactor     float64
}

// NewDefaultTukeyOptions returns the default fence
func NewDefaultTukeyOptions() *TukeyOptions {
	return &TukeyOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Options configures the outlier filter
type Options struct {
	Window    stats.Window
	Threshold float64
	Method    Method
	Tukey     *TukeyOptions
}

// NewDefaultOptions returns a z-score filter over a 20 day window
func NewDefaultOptions() *Options {
	window, _ := stats.ParseWindow("20D")
	return &Options{
		Window:    window,
		Threshold: DefaultThreshold,
		Method:    MethodZScore,
	}
}

// Validate returns the default options for nil and checks the window and threshold
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	out := *o
	if !out.Window.IsTime() && out.Window.Samples <= 0 {
		return nil, fmt.Errorf("window %s, %w", out.Window, stats.ErrInvalidWindow)
	}
	if out.Method == "" {
		out.Method = MethodZScore
	}
	switch out.Method {
	case MethodZScore:
		if !(out.Threshold > 0) || math.IsInf(out.Threshold, 0) {
			return nil, fmt.Errorf("got %f, %w", out.Threshold, ErrInvalidThreshold)
		}
	case MethodTukey:
		if out.Tukey == nil {
			out.Tukey = NewDefaultTukeyOptions()
		}
		t := out.Tukey
		if t.LowerPercentile < 0 || t.UpperPercentile > 1 || t.LowerPercentile >= t.UpperPercentile {
			return nil, ErrInvalidFence
		}
		if t.NumPasses < 1 {
			tc := *t
			tc.NumPasses = 1
			out.Tukey = &tc
		}
	default:
		return nil, fmt.Errorf("%q, %w", out.Method, ErrUnknownMethod)
	}
	return &out, nil
}
