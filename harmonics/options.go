package harmonics

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultNumCoefficients = 6
	minCoefficients        = 2
)

var (
	ErrInvalidCoefficients   = errors.New("at least an intercept and a slope coefficient are required")
	ErrInvalidRegularization = errors.New("regularization must be finite and non negative")
)

// Options configures the harmonic curve fit
type Options struct {
	// NumCoefficients is the total number of fitted coefficients including the intercept. The
	// regressors are added in the order slope, cos(wt), sin(wt), cos(2wt), sin(2wt), ...
	NumCoefficients int

	// Regularization switches from ordinary least squares to a lasso fit with this L1 multiplier
	// when positive
	Regularization float64
}

// NewDefaultOptions returns an OLS fit of an annual and a semi-annual harmonic with a linear trend
func NewDefaultOptions() *Options {
	return &Options{
		NumCoefficients: DefaultNumCoefficients,
	}
}

// Validate returns the default options for nil and checks the coefficient count
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.NumCoefficients < minCoefficients {
		return nil, fmt.Errorf("got %d coefficients, %w", o.NumCoefficients, ErrInvalidCoefficients)
	}
	if o.Regularization < 0 || math.IsNaN(o.Regularization) || math.IsInf(o.Regularization, 0) {
		return nil, fmt.Errorf("got %f, %w", o.Regularization, ErrInvalidRegularization)
	}
	return o, nil
}
