package outliers

import (
	"fmt"
	"slices"

	"github.com/Open-EO/FuseTS/cube"
)

// CubeOptions configures outlier filtering of every time series of a cube
type CubeOptions struct {
	Options

	// Variables limits ApplyDataset to the named variables. Others are dropped from the result.
	Variables []string

	TimeDimension string
	Parallelism   int
}

// NewDefaultCubeOptions returns the default cube filtering options
func NewDefaultCubeOptions() *CubeOptions {
	return &CubeOptions{
		Options:     *NewDefaultOptions(),
		Parallelism: 1,
	}
}

// Apply filters every time series of c along its temporal dimension.
func Apply(c *cube.Cube, opt *CubeOptions) (*cube.Cube, error) {
	if opt == nil {
		opt = NewDefaultCubeOptions()
	}
	kernelOpt, err := opt.Options.Validate()
	if err != nil {
		return nil, err
	}

	dim, err := c.TimeDimension(opt.TimeDimension)
	if err != nil {
		return nil, err
	}
	dates := c.Coords[dim].Times

	res, err := cube.ApplyAlong(c, dim, c.Coords[dim], func(idx int, in, out []float64) error {
		filtered, err := FilterWithOptions(dates, in, kernelOpt)
		if err != nil {
			return err
		}
		for i, val := range filtered {
			out[i] = float64(val)
		}
		return nil
	}, &cube.ApplyOptions{Parallelism: opt.Parallelism})
	if err != nil {
		return nil, fmt.Errorf("unable to filter %q, %w", c.Name, err)
	}
	return res, nil
}

// ApplyDataset filters the selected variables of ds, or all variables when none are selected.
func ApplyDataset(ds *cube.Dataset, opt *CubeOptions) (*cube.Dataset, error) {
	if opt == nil {
		opt = NewDefaultCubeOptions()
	}
	for _, name := range opt.Variables {
		if _, err := ds.Var(name); err != nil {
			return nil, err
		}
	}

	out := new(cube.Dataset)
	for _, name := range ds.Names() {
		if len(opt.Variables) > 0 && !slices.Contains(opt.Variables, name) {
			continue
		}
		c, err := ds.Var(name)
		if err != nil {
			return nil, err
		}
		filtered, err := Apply(c, opt)
		if err != nil {
			return nil, err
		}
		if err := out.Add(filtered); err != nil {
			return nil, err
		}
	}
	return out, nil
}
