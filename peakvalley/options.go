package peakvalley

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultDropThreshold  = 0.15
	DefaultRecoveryRatio  = 1.0
	DefaultSlopeThreshold = -0.007
)

var ErrInvalidThreshold = errors.New("thresholds must be finite with non negative drop and recovery")

// Options configures the peak-valley detection
type Options struct {
	// DropThreshold is the minimum amplitude of a drop from peak to valley
	DropThreshold float64

	// RecoveryRatio scales DropThreshold into the amplitude required to recover after the valley
	RecoveryRatio float64

	// SlopeThreshold is the per day slope below which the onset of a drop is moved further back
	SlopeThreshold float64
}

// NewDefaultOptions returns the default detection thresholds
func NewDefaultOptions() *Options {
	return &Options{
		DropThreshold:  DefaultDropThreshold,
		RecoveryRatio:  DefaultRecoveryRatio,
		SlopeThreshold: DefaultSlopeThreshold,
	}
}

// Validate returns the default options for nil and checks the thresholds
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	for _, v := range []float64{o.DropThreshold, o.RecoveryRatio, o.SlopeThreshold} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("got %f, %w", v, ErrInvalidThreshold)
		}
	}
	if o.DropThreshold < 0 || o.RecoveryRatio < 0 {
		return nil, fmt.Errorf("drop %f recovery ratio %f, %w", o.DropThreshold, o.RecoveryRatio, ErrInvalidThreshold)
	}
	return o, nil
}

func (o *Options) recoveryThreshold() float64 {
	return o.DropThreshold * o.RecoveryRatio
}
