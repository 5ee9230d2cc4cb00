package peakvalley

import (
	"fmt"

	"github.com/Open-EO/FuseTS/cube"
)

// MaskName is the name of the cube produced by Apply
const MaskName = "peak_valley_mask"

// CubeOptions configures peak-valley detection over every time series of a cube
type CubeOptions struct {
	Options

	TimeDimension string
	Parallelism   int
}

// NewDefaultCubeOptions returns the default cube detection options
func NewDefaultCubeOptions() *CubeOptions {
	return &CubeOptions{
		Options:     *NewDefaultOptions(),
		Parallelism: 1,
	}
}

// Apply marks peak-valley events along the temporal dimension of c. The result is named
// peak_valley_mask.
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
		mask, _, err := Detect(dates, in, kernelOpt)
		if err != nil {
			return err
		}
		copy(out, mask)
		return nil
	}, &cube.ApplyOptions{Parallelism: opt.Parallelism})
	if err != nil {
		return nil, fmt.Errorf("unable to detect peak-valley events in %q, %w", c.Name, err)
	}
	res.Name = MaskName
	return res, nil
}

// ApplyDataset marks events in every variable of ds. A single variable yields peak_valley_mask,
// several yield <variable>_peak_valley_mask.
func ApplyDataset(ds *cube.Dataset, opt *CubeOptions) (*cube.Dataset, error) {
	names := ds.Names()
	out := new(cube.Dataset)
	for _, name := range names {
		c, err := ds.Var(name)
		if err != nil {
			return nil, err
		}
		mask, err := Apply(c, opt)
		if err != nil {
			return nil, err
		}
		if len(names) > 1 {
			mask.Name = name + "_" + MaskName
		}
		if err := out.Add(mask); err != nil {
			return nil, err
		}
	}
	return out, nil
}
