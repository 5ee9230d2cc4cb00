package whittaker

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultLambda = 10000.0
	DefaultStep   = 1
)

var (
	ErrInvalidLambda = errors.New("lambda must be positive and bounds must hold two ordered log10 values")
	ErrInvalidStep   = errors.New("output step must be at least one day")
)

// Options configures a single series smoothing
type Options struct {
	// Lambda is the smoothing strength applied per day
	Lambda float64

	// LogLambdaBounds enables the automatic lambda search when it holds two log10 bounds [lo, hi]
	LogLambdaBounds []float64

	// Step is the spacing in days of the subsampled output
	Step int
}

// NewDefaultOptions returns the default smoothing options
func NewDefaultOptions() *Options {
	return &Options{
		Lambda: DefaultLambda,
		Step:   DefaultStep,
	}
}

// Validate returns the default options for nil and checks lambda and step
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Step < 1 {
		return nil, fmt.Errorf("got %d, %w", o.Step, ErrInvalidStep)
	}
	if o.LogLambdaBounds != nil {
		if len(o.LogLambdaBounds) != 2 {
			return nil, fmt.Errorf("got %d bounds, %w", len(o.LogLambdaBounds), ErrInvalidLambda)
		}
		lo, hi := o.LogLambdaBounds[0], o.LogLambdaBounds[1]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
			return nil, fmt.Errorf("got bounds [%f, %f], %w", lo, hi, ErrInvalidLambda)
		}
		return o, nil
	}
	if !(o.Lambda > 0) || math.IsInf(o.Lambda, 0) {
		return nil, fmt.Errorf("got %f, %w", o.Lambda, ErrInvalidLambda)
	}
	return o, nil
}

// Auto reports whether lambda is searched within LogLambdaBounds
func (o *Options) Auto() bool {
	return len(o.LogLambdaBounds) == 2
}
