package mogpr

import (
	"errors"
	"fmt"
)

const (
	DefaultRepeats       = 1
	DefaultMaxIterations = 200
	DefaultSampleSize    = 4
)

var (
	ErrInvalidRepeats    = errors.New("repeats must be positive")
	ErrInvalidIterations = errors.New("max iterations must be positive")
	ErrInvalidSampleSize = errors.New("sample size must be positive")
)

// Options configures a single fusion
type Options struct {
	// Repeats is the number of independent fits whose predictions are averaged
	Repeats int

	// Model holds fixed hyperparameters. When set no optimization is performed.
	Model *Model

	// Seed drives the random initialization of the coregionalization weights
	Seed uint64

	// MaxIterations bounds the number of L-BFGS iterations per fit
	MaxIterations int
}

// NewDefaultOptions returns a single fit with default optimizer settings
func NewDefaultOptions() *Options {
	return &Options{
		Repeats:       DefaultRepeats,
		MaxIterations: DefaultMaxIterations,
	}
}

// Validate returns the default options for nil and checks the fit settings
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Repeats <= 0 {
		return nil, fmt.Errorf("got %d, %w", o.Repeats, ErrInvalidRepeats)
	}
	if o.MaxIterations <= 0 {
		return nil, fmt.Errorf("got %d, %w", o.MaxIterations, ErrInvalidIterations)
	}
	if o.Model != nil {
		if err := o.Model.Validate(); err != nil {
			return nil, err
		}
	}
	return o, nil
}
