package mogpr

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Open-EO/FuseTS/cube"
)

var (
	ErrNotFitted = errors.New("transformer has no fitted model")
	ErrNoModel   = errors.New("no sampled pixel produced a model")
)

// TransformerOptions configures the two phase fit and transform
type TransformerOptions struct {
	CubeOptions

	// SampleSize bounds every non temporal index of the pixels scanned by Fit
	SampleSize int
}

// NewDefaultTransformerOptions samples the first 4 by 4 pixels
func NewDefaultTransformerOptions() *TransformerOptions {
	return &TransformerOptions{
		CubeOptions: *NewDefaultCubeOptions(),
		SampleSize:  DefaultSampleSize,
	}
}

// Validate returns the default options for nil and checks the sample size
func (o *TransformerOptions) Validate() (*TransformerOptions, error) {
	if o == nil {
		return NewDefaultTransformerOptions(), nil
	}
	if o.SampleSize <= 0 {
		return nil, fmt.Errorf("got %d, %w", o.SampleSize, ErrInvalidSampleSize)
	}
	return o, nil
}

// Transformer fits one model on a small sample of pixels and reuses it for the whole dataset, trading
// accuracy for speed.
type Transformer struct {
	opt   *TransformerOptions
	model *Model
}

// NewTransformer initializes an unfitted transformer
func NewTransformer(opt *TransformerOptions) (*Transformer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Transformer{opt: opt}, nil
}

// NewTransformerFromModel creates a transformer that is already fitted with model.
func NewTransformerFromModel(opt *TransformerOptions, model *Model) (*Transformer, error) {
	t, err := NewTransformer(opt)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, ErrNotFitted
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	t.model = model
	return t, nil
}

// Model returns the fitted model or nil.
func (t *Transformer) Model() *Model {
	return t.model
}

// Fit scans the sampled pixels in order and keeps the model of the first successful fit.
func (t *Transformer) Fit(ds *cube.Dataset) error {
	names, err := selectVariables(ds, t.opt.Variables)
	if err != nil {
		return err
	}
	if len(names) < 2 {
		return fmt.Errorf("got %d variables, %w", len(names), ErrTooFewVariables)
	}
	dim, err := ds.TimeDimension(t.opt.TimeDimension)
	if err != nil {
		return err
	}
	dates, err := ds.Dates(dim)
	if err != nil {
		return err
	}
	array, err := ds.ToArray(bandDimension, names...)
	if err != nil {
		return err
	}
	blocks, err := array.Blocks(bandDimension, dim)
	if err != nil {
		return err
	}

	days := dayOrdinals(dates)
	fitOpt := t.opt.kernelOptions(t.opt.Seed)
	fitOpt.Model = nil
	for k := 0; k < blocks.Count(); k++ {
		if !t.sampled(blocks.Index(k)) {
			continue
		}
		block := blocks.Read(k)
		series := make([]Series, len(block))
		for i, values := range block {
			series[i] = Series{Days: days, Values: values}
		}
		fitOpt.Seed = sliceSeed(t.opt.Seed, k)
		res, err := Fuse(series, masterIndex, nil, fitOpt)
		if err != nil {
			return err
		}
		if res.OK && res.Model != nil {
			slog.Debug("fitted fusion model", "pixel", k, "lengthscale", res.Model.Lengthscale)
			t.model = res.Model
			return nil
		}
	}
	return ErrNoModel
}

func (t *Transformer) sampled(idx []int) bool {
	for _, pos := range idx {
		if pos >= t.opt.SampleSize {
			return false
		}
	}
	return true
}

// Transform fuses every pixel of ds with the fitted model.
func (t *Transformer) Transform(ds *cube.Dataset) (*cube.Dataset, error) {
	if t.model == nil {
		return nil, ErrNotFitted
	}
	opt := t.opt.CubeOptions
	opt.Model = t.model
	return Apply(ds, &opt)
}

// FitTransform fits on the sampled pixels and transforms all of ds.
func (t *Transformer) FitTransform(ds *cube.Dataset) (*cube.Dataset, error) {
	if err := t.Fit(ds); err != nil {
		return nil, err
	}
	return t.Transform(ds)
}
