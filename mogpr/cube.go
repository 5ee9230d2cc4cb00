package mogpr

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/timedataset"
)

const (
	FusedSuffix = "_FUSED"
	StdSuffix   = "_STD"
	RawSuffix   = "_RAW"

	// bandDimension stacks the variables while fusing
	bandDimension = "variable"
	masterIndex   = 0
)

var ErrEmptyOutputRange = errors.New("the result does not contain any output times, select a larger range")

// CubeOptions configures the fusion of the variables of a dataset
type CubeOptions struct {
	// Variables selects the variables to fuse, all variables when empty
	Variables []string

	TimeDimension string

	// PredictionPeriod is an ISO-8601 duration such as P5D. Empty predicts at the input dates.
	PredictionPeriod string

	// IncludeUncertainties adds a <variable>_STD output per variable
	IncludeUncertainties bool

	// IncludeRawInputs adds the inputs at the output dates as <variable>_RAW
	IncludeRawInputs bool

	Parallelism   int
	Repeats       int
	Seed          uint64
	MaxIterations int

	// Model fixes the hyperparameters for every pixel instead of fitting each one
	Model *Model
}

// NewDefaultCubeOptions returns fusion of all variables at the input dates
func NewDefaultCubeOptions() *CubeOptions {
	return &CubeOptions{
		Parallelism:   1,
		Repeats:       DefaultRepeats,
		MaxIterations: DefaultMaxIterations,
	}
}

func (o *CubeOptions) kernelOptions(seed uint64) *Options {
	return &Options{
		Repeats:       o.Repeats,
		Model:         o.Model,
		Seed:          seed,
		MaxIterations: o.MaxIterations,
	}
}

// sliceSeed derives an independent seed for every pixel
func sliceSeed(seed uint64, idx int) uint64 {
	return seed + uint64(idx)*0x9e3779b97f4a7c15
}

func outputDates(dates []time.Time, period string) ([]time.Time, error) {
	if period == "" || len(dates) == 0 {
		return dates, nil
	}
	return timedataset.OutputDates(period, dates[0], dates[len(dates)-1])
}

func dayOrdinals(dates []time.Time) []float64 {
	days := make([]float64, len(dates))
	for i, d := range dates {
		days[i] = float64(timedataset.DayOrdinal(d))
	}
	return days
}

func selectVariables(ds *cube.Dataset, variables []string) ([]string, error) {
	names := ds.Names()
	if len(variables) == 0 {
		return names, nil
	}
	for _, v := range variables {
		if !slices.Contains(names, v) {
			return nil, fmt.Errorf("%q, %w", v, cube.ErrVariableNotFound)
		}
	}
	return slices.DeleteFunc(names, func(name string) bool {
		return !slices.Contains(variables, name)
	}), nil
}

// Apply fuses the selected variables of ds pixel by pixel. Every variable v yields v_FUSED and
// optionally v_STD and v_RAW with the time coordinate replaced by the output dates. Pixels whose fit
// fails are left NaN.
func Apply(ds *cube.Dataset, opt *CubeOptions) (*cube.Dataset, error) {
	if opt == nil {
		opt = NewDefaultCubeOptions()
	}
	if _, err := opt.kernelOptions(opt.Seed).Validate(); err != nil {
		return nil, err
	}

	names, err := selectVariables(ds, opt.Variables)
	if err != nil {
		return nil, err
	}
	if len(names) < 2 {
		return nil, fmt.Errorf("got %d variables, %w", len(names), ErrTooFewVariables)
	}
	if opt.Model != nil && opt.Model.NumOutputs() != len(names) {
		return nil, fmt.Errorf("model has %d outputs for %d variables, %w", opt.Model.NumOutputs(), len(names), ErrOutputMismatch)
	}

	dim, err := ds.TimeDimension(opt.TimeDimension)
	if err != nil {
		return nil, err
	}
	dates, err := ds.Dates(dim)
	if err != nil {
		return nil, err
	}
	outDates, err := outputDates(dates, opt.PredictionPeriod)
	if err != nil {
		return nil, err
	}
	if len(outDates) == 0 {
		return nil, ErrEmptyOutputRange
	}

	array, err := ds.ToArray(bandDimension, names...)
	if err != nil {
		return nil, err
	}

	bands := make([]string, 0, 2*len(names))
	for _, name := range names {
		bands = append(bands, name+FusedSuffix)
	}
	for _, name := range names {
		bands = append(bands, name+StdSuffix)
	}

	days := dayOrdinals(dates)
	outDays := dayOrdinals(outDates)
	var failed atomic.Int64
	res, err := cube.ApplyAlongMulti(array, bandDimension, dim, cube.LabelCoord(bands...), cube.TimeCoord(outDates),
		func(idx int, in, out [][]float64) error {
			series := make([]Series, len(in))
			for i, values := range in {
				series[i] = Series{Days: days, Values: values}
			}
			fused, err := Fuse(series, masterIndex, outDays, opt.kernelOptions(sliceSeed(opt.Seed, idx)))
			if err != nil {
				return err
			}
			if !fused.OK {
				failed.Add(1)
			}
			for i := range series {
				copy(out[i], fused.Mean[i])
				copy(out[len(series)+i], fused.Std[i])
			}
			return nil
		}, &cube.ApplyOptions{Parallelism: opt.Parallelism})
	if err != nil {
		return nil, fmt.Errorf("unable to fuse %v, %w", names, err)
	}
	if n := failed.Load(); n > 0 {
		slog.Warn("fusion failed for some pixels", "variables", names, "pixels", n)
	}

	fused, err := cube.DatasetFromArray(res, bandDimension)
	if err != nil {
		return nil, err
	}

	out := new(cube.Dataset)
	for _, name := range names {
		if err := addVar(out, fused, name+FusedSuffix); err != nil {
			return nil, err
		}
	}
	if opt.IncludeUncertainties {
		for _, name := range names {
			if err := addVar(out, fused, name+StdSuffix); err != nil {
				return nil, err
			}
		}
	}
	if opt.IncludeRawInputs {
		for _, name := range names {
			raw, err := rawAt(ds, name, dim, outDates)
			if err != nil {
				return nil, err
			}
			if err := out.Add(raw); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func addVar(dst, src *cube.Dataset, name string) error {
	c, err := src.Var(name)
	if err != nil {
		return err
	}
	return dst.Add(c)
}

// rawAt realigns a variable to the output dates by day, leaving dates without an input NaN.
func rawAt(ds *cube.Dataset, name, dim string, outDates []time.Time) (*cube.Cube, error) {
	c, err := ds.Var(name)
	if err != nil {
		return nil, err
	}
	positions := make(map[int]int, len(c.Coords[dim].Times))
	for i, d := range c.Coords[dim].Times {
		positions[timedataset.DayOrdinal(d)] = i
	}

	raw, err := cube.ApplyAlong(c, dim, cube.TimeCoord(outDates), func(idx int, in, out []float64) error {
		for s, d := range outDates {
			if i, exists := positions[timedataset.DayOrdinal(d)]; exists {
				out[s] = in[i]
			}
		}
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	raw.Name = name + RawSuffix
	return raw, nil
}
