package harmonics

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/linearmodel"
)

// BandDimension replaces the temporal dimension in the output of Apply.
const BandDimension = "bands"

// CubeOptions configures the harmonic fit of every time series of a cube
type CubeOptions struct {
	Options

	TimeDimension string
	Parallelism   int

	// Strict fails the operation on slices with fewer observations than coefficients instead of
	// leaving them NaN
	Strict bool
}

// NewDefaultCubeOptions returns the default cube fit options
func NewDefaultCubeOptions() *CubeOptions {
	return &CubeOptions{
		Options:     *NewDefaultOptions(),
		Parallelism: 1,
	}
}

// Apply fits every time series of c. The temporal dimension is replaced by a bands dimension holding
// the coefficients labeled by BandNames.
func Apply(c *cube.Cube, opt *CubeOptions) (*cube.Cube, error) {
	if opt == nil {
		opt = NewDefaultCubeOptions()
	}
	fitOpt, err := opt.Options.Validate()
	if err != nil {
		return nil, err
	}

	dim, err := c.TimeDimension(opt.TimeDimension)
	if err != nil {
		return nil, err
	}
	dates := c.Coords[dim].Times

	var skipped atomic.Int64
	bands := cube.LabelCoord(BandNames(fitOpt.NumCoefficients)...)
	res, err := cube.ApplyAlong(c, dim, bands, func(idx int, in, out []float64) error {
		fit, err := Fit(dates, in, fitOpt)
		if err != nil {
			if isDegenerate(err) && !opt.Strict {
				skipped.Add(1)
				return nil
			}
			return err
		}
		copy(out, fit.Coefficients())
		return nil
	}, &cube.ApplyOptions{Parallelism: opt.Parallelism})
	if err != nil {
		return nil, fmt.Errorf("unable to fit harmonics to %q, %w", c.Name, err)
	}
	if n := skipped.Load(); n > 0 {
		slog.Warn("left slices with too few observations empty", "variable", c.Name, "slices", n)
	}
	return res.RenameDim(dim, BandDimension)
}

func isDegenerate(err error) bool {
	return errors.Is(err, linearmodel.ErrUnderdetermined) || errors.Is(err, linearmodel.ErrSingular)
}

// ApplyDataset fits every variable of ds.
func ApplyDataset(ds *cube.Dataset, opt *CubeOptions) (*cube.Dataset, error) {
	out := new(cube.Dataset)
	for _, name := range ds.Names() {
		c, err := ds.Var(name)
		if err != nil {
			return nil, err
		}
		fit, err := Apply(c, opt)
		if err != nil {
			return nil, err
		}
		if err := out.Add(fit); err != nil {
			return nil, err
		}
	}
	return out, nil
}
