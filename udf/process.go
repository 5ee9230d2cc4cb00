package udf

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/harmonics"
	"github.com/Open-EO/FuseTS/mogpr"
	"github.com/Open-EO/FuseTS/outliers"
	"github.com/Open-EO/FuseTS/peakvalley"
	"github.com/Open-EO/FuseTS/stats"
	"github.com/Open-EO/FuseTS/whittaker"
)

// Names of the packaged processes.
const (
	ProcessWhittaker        = "whittaker"
	ProcessMOGPR            = "mogpr"
	ProcessPeakValley       = "peakvalley"
	ProcessTemporalOutliers = "temporal_outliers"
	ProcessFitHarmonics     = "fit_harmonics"
)

// DefaultWindow is the rolling window of temporal_outliers when none is given
const DefaultWindow = "20D"

var ErrUnknownProcess = errors.New("unknown process")

// Settings carries the execution settings of the backend running a process.
type Settings struct {
	Parallelism int

	// Strict fails on slices without enough observations instead of leaving them NaN
	Strict bool
}

// ProcessFunc runs a packaged process over a dataset.
type ProcessFunc func(ds *cube.Dataset, params Context, s Settings) (*cube.Dataset, error)

var registry = map[string]ProcessFunc{
	ProcessWhittaker:        runWhittaker,
	ProcessMOGPR:            runMOGPR,
	ProcessPeakValley:       runPeakValley,
	ProcessTemporalOutliers: runTemporalOutliers,
	ProcessFitHarmonics:     runFitHarmonics,
}

// Processes lists the packaged process names in sorted order.
func Processes() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Lookup returns the process registered under name.
func Lookup(name string) (ProcessFunc, error) {
	fn, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownProcess)
	}
	return fn, nil
}

func runWhittaker(ds *cube.Dataset, params Context, s Settings) (*cube.Dataset, error) {
	opt := whittaker.NewDefaultCubeOptions()
	var err error
	if opt.SmoothingLambda, opt.LogLambdaBounds, err = params.Lambda(whittaker.DefaultLambda); err != nil {
		return nil, err
	}
	if opt.TimeDimension, err = params.String(KeyTimeDimension, ""); err != nil {
		return nil, err
	}
	if opt.PredictionPeriod, err = params.String(KeyPredictionPeriod, ""); err != nil {
		return nil, err
	}
	opt.Parallelism = s.Parallelism
	opt.Strict = s.Strict
	return whittaker.ApplyDataset(ds, opt)
}

// MOGPROptions builds the fusion options of the mogpr process from its context.
func MOGPROptions(params Context, s Settings) (*mogpr.TransformerOptions, error) {
	opt := mogpr.NewDefaultTransformerOptions()
	var err error
	if opt.Variables, err = params.Strings(KeyVariables); err != nil {
		return nil, err
	}
	if opt.TimeDimension, err = params.String(KeyTimeDimension, ""); err != nil {
		return nil, err
	}
	if opt.PredictionPeriod, err = params.String(KeyPredictionPeriod, ""); err != nil {
		return nil, err
	}
	if opt.IncludeUncertainties, err = params.Bool(KeyIncludeUncertainties, false); err != nil {
		return nil, err
	}
	if opt.IncludeRawInputs, err = params.Bool(KeyIncludeRawInputs, false); err != nil {
		return nil, err
	}
	opt.Parallelism = s.Parallelism
	return opt, nil
}

// runMOGPR fits every pixel on its own. Reusing one model across pixels is left to the two phase
// mogpr.Transformer.
func runMOGPR(ds *cube.Dataset, params Context, s Settings) (*cube.Dataset, error) {
	opt, err := MOGPROptions(params, s)
	if err != nil {
		return nil, err
	}
	return mogpr.Apply(ds, &opt.CubeOptions)
}

func runPeakValley(ds *cube.Dataset, params Context, s Settings) (*cube.Dataset, error) {
	opt := peakvalley.NewDefaultCubeOptions()
	var err error
	if opt.DropThreshold, err = params.Float(KeyDropThreshold, peakvalley.DefaultDropThreshold); err != nil {
		return nil, err
	}
	if opt.RecoveryRatio, err = params.Float(KeyRecoveryRatio, peakvalley.DefaultRecoveryRatio); err != nil {
		return nil, err
	}
	if opt.SlopeThreshold, err = params.Float(KeySlopeThreshold, peakvalley.DefaultSlopeThreshold); err != nil {
		return nil, err
	}
	if opt.TimeDimension, err = params.String(KeyTimeDimension, ""); err != nil {
		return nil, err
	}
	opt.Parallelism = s.Parallelism
	return peakvalley.ApplyDataset(ds, opt)
}

func runTemporalOutliers(ds *cube.Dataset, params Context, s Settings) (*cube.Dataset, error) {
	opt := outliers.NewDefaultCubeOptions()
	window, err := params.String(KeyWindow, DefaultWindow)
	if err != nil {
		return nil, err
	}
	if opt.Window, err = stats.ParseWindow(window); err != nil {
		return nil, invalid(KeyWindow, window, err)
	}
	if opt.Threshold, err = params.Float(KeyThreshold, outliers.DefaultThreshold); err != nil {
		return nil, err
	}
	if opt.Variables, err = params.Strings(KeyVariables); err != nil {
		return nil, err
	}
	if opt.TimeDimension, err = params.String(KeyTimeDimension, ""); err != nil {
		return nil, err
	}
	opt.Parallelism = s.Parallelism
	return outliers.ApplyDataset(ds, opt)
}

func runFitHarmonics(ds *cube.Dataset, params Context, s Settings) (*cube.Dataset, error) {
	opt := harmonics.NewDefaultCubeOptions()
	var err error
	if opt.NumCoefficients, err = params.Int(KeyNumCoefficients, harmonics.DefaultNumCoefficients); err != nil {
		return nil, err
	}
	if opt.TimeDimension, err = params.String(KeyTimeDimension, ""); err != nil {
		return nil, err
	}
	opt.Parallelism = s.Parallelism
	opt.Strict = s.Strict
	return harmonics.ApplyDataset(ds, opt)
}
