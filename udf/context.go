package udf

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cast"
)

// Context keys understood by the packaged processes.
const (
	KeySmoothingLambda      = "smoothing_lambda"
	KeyVariables            = "variables"
	KeyTimeDimension        = "time_dimension"
	KeyPredictionPeriod     = "prediction_period"
	KeyIncludeUncertainties = "include_uncertainties"
	KeyIncludeRawInputs     = "include_raw_inputs"
	KeyDropThreshold        = "drop_thr"
	KeyRecoveryRatio        = "rec_r"
	KeySlopeThreshold       = "slope_thr"
	KeyWindow               = "window"
	KeyThreshold            = "threshold"
	KeyNumCoefficients      = "num_coefficients"
)

var knownKeys = []string{
	KeySmoothingLambda,
	KeyVariables,
	KeyTimeDimension,
	KeyPredictionPeriod,
	KeyIncludeUncertainties,
	KeyIncludeRawInputs,
	KeyDropThreshold,
	KeyRecoveryRatio,
	KeySlopeThreshold,
	KeyWindow,
	KeyThreshold,
	KeyNumCoefficients,
}

var (
	ErrUnknownParameter = errors.New("unknown context parameter")
	ErrInvalidParameter = errors.New("invalid context parameter")
)

// Context is the flat key/value parameter map passed to a process. Values are loosely typed, as
// decoded from JSON or a config file, and coerced on access.
type Context map[string]any

// Validate rejects keys no process understands.
func (c Context) Validate() error {
	for key := range c {
		if !slices.Contains(knownKeys, key) {
			return fmt.Errorf("%q, %w", key, ErrUnknownParameter)
		}
	}
	return nil
}

func (c Context) lookup(key string) (any, bool) {
	val, exists := c[key]
	if !exists || val == nil {
		return nil, false
	}
	return val, true
}

func invalid(key string, val any, err error) error {
	return fmt.Errorf("%s=%v, %w, %w", key, val, err, ErrInvalidParameter)
}

// Float returns the value of key as a float64 or def when it is absent.
func (c Context) Float(key string, def float64) (float64, error) {
	val, exists := c.lookup(key)
	if !exists {
		return def, nil
	}
	f, err := cast.ToFloat64E(val)
	if err != nil {
		return 0, invalid(key, val, err)
	}
	return f, nil
}

// Int returns the value of key as an int or def when it is absent.
func (c Context) Int(key string, def int) (int, error) {
	val, exists := c.lookup(key)
	if !exists {
		return def, nil
	}
	i, err := cast.ToIntE(val)
	if err != nil {
		return 0, invalid(key, val, err)
	}
	return i, nil
}

// Bool returns the value of key as a bool or def when it is absent.
func (c Context) Bool(key string, def bool) (bool, error) {
	val, exists := c.lookup(key)
	if !exists {
		return def, nil
	}
	b, err := cast.ToBoolE(val)
	if err != nil {
		return false, invalid(key, val, err)
	}
	return b, nil
}

// String returns the value of key as a string or def when it is absent.
func (c Context) String(key, def string) (string, error) {
	val, exists := c.lookup(key)
	if !exists {
		return def, nil
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		return "", invalid(key, val, err)
	}
	return s, nil
}

// Strings returns the value of key as a list of strings. A single string is split on whitespace.
func (c Context) Strings(key string) ([]string, error) {
	val, exists := c.lookup(key)
	if !exists {
		return nil, nil
	}
	s, err := cast.ToStringSliceE(val)
	if err != nil {
		return nil, invalid(key, val, err)
	}
	return s, nil
}

// Lambda returns the smoothing strength. A number fixes lambda, a two element list holds the log10
// bounds of the automatic search and an absent value falls back to def.
func (c Context) Lambda(def float64) (float64, []float64, error) {
	val, exists := c.lookup(KeySmoothingLambda)
	if !exists {
		return def, nil, nil
	}
	if bounds, err := cast.ToFloat64SliceE(val); err == nil {
		if len(bounds) != 2 {
			return 0, nil, invalid(KeySmoothingLambda, val, errors.New("expected two log10 bounds"))
		}
		return def, bounds, nil
	}
	lambda, err := cast.ToFloat64E(val)
	if err != nil {
		return 0, nil, invalid(KeySmoothingLambda, val, err)
	}
	return lambda, nil, nil
}
