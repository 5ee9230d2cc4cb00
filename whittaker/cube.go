package whittaker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/timedataset"
)

// CubeOptions configures smoothing of every time series of a cube
type CubeOptions struct {
	// SmoothingLambda is the fixed smoothing strength, ignored when LogLambdaBounds is set
	SmoothingLambda float64

	// LogLambdaBounds enables the per slice automatic lambda search
	LogLambdaBounds []float64

	// TimeDimension names the temporal dimension, only needed when it is ambiguous
	TimeDimension string

	// PredictionPeriod is an ISO-8601 duration such as P5D. The output grid starts at the first
	// input date. Empty keeps the input dates.
	PredictionPeriod string

	Parallelism int

	// Strict fails the operation on slices without enough observations instead of leaving them NaN
	Strict bool
}

// NewDefaultCubeOptions returns the default cube smoothing options
func NewDefaultCubeOptions() *CubeOptions {
	return &CubeOptions{
		SmoothingLambda: DefaultLambda,
		Parallelism:     1,
	}
}

// Validate returns the default options for nil and checks the smoothing parameters
func (o *CubeOptions) Validate() (*CubeOptions, error) {
	if o == nil {
		o = NewDefaultCubeOptions()
	}
	if _, err := o.kernelOptions().Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *CubeOptions) kernelOptions() *Options {
	return &Options{
		Lambda:          o.SmoothingLambda,
		LogLambdaBounds: o.LogLambdaBounds,
		Step:            1,
	}
}

// OutputDates returns the dates a cube operation produces for the input dates.
func OutputDates(dates []time.Time, predictionPeriod string) ([]time.Time, error) {
	if predictionPeriod == "" || len(dates) == 0 {
		return dates, nil
	}
	return timedataset.OutputDates(predictionPeriod, dates[0], dates[len(dates)-1])
}

// Apply smooths every time series of c. The result keeps the dimension order of c with the time
// coordinate replaced by the output dates.
func Apply(c *cube.Cube, opt *CubeOptions) (*cube.Cube, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	dim, err := c.TimeDimension(opt.TimeDimension)
	if err != nil {
		return nil, err
	}
	dates := c.Coords[dim].Times
	outDates, err := OutputDates(dates, opt.PredictionPeriod)
	if err != nil {
		return nil, err
	}

	kernelOpt := opt.kernelOptions()
	var skipped atomic.Int64
	res, err := cube.ApplyAlong(c, dim, cube.TimeCoord(outDates), func(idx int, in, out []float64) error {
		smoothed, err := Smooth(dates, in, kernelOpt)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) && !opt.Strict {
				skipped.Add(1)
				return nil
			}
			return err
		}
		copy(out, smoothed.ValuesAt(outDates))
		return nil
	}, &cube.ApplyOptions{Parallelism: opt.Parallelism})
	if err != nil {
		return nil, fmt.Errorf("unable to smooth %q, %w", c.Name, err)
	}

	if n := skipped.Load(); n > 0 {
		slog.Warn("left slices without enough observations empty", "variable", c.Name, "slices", n)
	}
	return res, nil
}

// ApplyDataset smooths every variable of ds.
func ApplyDataset(ds *cube.Dataset, opt *CubeOptions) (*cube.Dataset, error) {
	out := new(cube.Dataset)
	for _, name := range ds.Names() {
		c, err := ds.Var(name)
		if err != nil {
			return nil, err
		}
		smoothed, err := Apply(c, opt)
		if err != nil {
			return nil, err
		}
		if err := out.Add(smoothed); err != nil {
			return nil, err
		}
	}
	return out, nil
}
