// Package fusets reconstructs and fuses earth observation time series held in labeled cubes. The
// transformers in this package wrap the packaged processes behind an estimator style API where
// parameters can be stored on the transformer and overridden per call.
package fusets

import (
	"context"
	"maps"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/udf"
)

// Estimator holds a set of named parameters.
type Estimator interface {
	Params() udf.Context
	SetParams(params udf.Context) error
}

// Transformer turns a dataset into a reconstructed dataset.
type Transformer interface {
	Estimator
	FitTransform(ds *cube.Dataset, params udf.Context) (*cube.Dataset, error)
}

// ProcessTransformer runs one packaged process with stored parameters
type ProcessTransformer struct {
	opt     *Options
	process string
	params  udf.Context
}

// NewProcessTransformer creates a transformer for the named process. If no options are provided a
// default is used.
func NewProcessTransformer(process string, opt *Options) (*ProcessTransformer, error) {
	if _, err := udf.Lookup(process); err != nil {
		return nil, err
	}
	return newProcess(process, opt), nil
}

// NewWhittaker smooths every variable with the Whittaker smoother
func NewWhittaker(opt *Options) *ProcessTransformer {
	return newProcess(udf.ProcessWhittaker, opt)
}

// NewPeakValley marks peak-valley events in every variable
func NewPeakValley(opt *Options) *ProcessTransformer {
	return newProcess(udf.ProcessPeakValley, opt)
}

// NewTemporalOutliers replaces temporal outliers by their rolling mean
func NewTemporalOutliers(opt *Options) *ProcessTransformer {
	return newProcess(udf.ProcessTemporalOutliers, opt)
}

// NewHarmonics fits a harmonic curve to every time series
func NewHarmonics(opt *Options) *ProcessTransformer {
	return newProcess(udf.ProcessFitHarmonics, opt)
}

func newProcess(process string, opt *Options) *ProcessTransformer {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &ProcessTransformer{
		opt:     opt,
		process: process,
		params:  make(udf.Context),
	}
}

// Process returns the name of the wrapped process.
func (t *ProcessTransformer) Process() string {
	return t.process
}

// Params returns a copy of the stored parameters.
func (t *ProcessTransformer) Params() udf.Context {
	return maps.Clone(t.params)
}

// SetParams merges params into the stored parameters.
func (t *ProcessTransformer) SetParams(params udf.Context) error {
	if err := params.Validate(); err != nil {
		return err
	}
	maps.Copy(t.params, params)
	return nil
}

// FitTransform runs the process on ds. params override the stored parameters for this call only.
func (t *ProcessTransformer) FitTransform(ds *cube.Dataset, params udf.Context) (*cube.Dataset, error) {
	return t.opt.backend().Run(context.Background(), t.process, ds, merge(t.params, params))
}

func merge(stored, override udf.Context) udf.Context {
	params := maps.Clone(stored)
	if params == nil {
		params = make(udf.Context, len(override))
	}
	maps.Copy(params, override)
	return params
}
