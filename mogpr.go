package fusets

import (
	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/mogpr"
	"github.com/Open-EO/FuseTS/udf"
)

// MOGPRTransformer fuses the variables of a dataset with one fusion model fitted on a sample of
// pixels. It always runs in the calling process since the fitted model is kept on the transformer.
type MOGPRTransformer struct {
	opt    *Options
	params udf.Context
	tr     *mogpr.Transformer
}

// NewMOGPR creates an unfitted fusion transformer. If no options are provided a default is used.
func NewMOGPR(opt *Options) *MOGPRTransformer {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &MOGPRTransformer{opt: opt, params: make(udf.Context)}
}

func (t *MOGPRTransformer) Params() udf.Context {
	return merge(t.params, nil)
}

func (t *MOGPRTransformer) SetParams(params udf.Context) error {
	if err := params.Validate(); err != nil {
		return err
	}
	t.params = merge(t.params, params)
	return nil
}

func (t *MOGPRTransformer) options(params udf.Context) (*mogpr.TransformerOptions, error) {
	params = merge(t.params, params)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return udf.MOGPROptions(params, t.opt.settings())
}

// Fit fits the fusion model on the sampled pixels of ds. params override the stored parameters and
// are kept for the following Transform calls.
func (t *MOGPRTransformer) Fit(ds *cube.Dataset, params udf.Context) error {
	opt, err := t.options(params)
	if err != nil {
		return err
	}
	tr, err := mogpr.NewTransformer(opt)
	if err != nil {
		return err
	}
	if err := tr.Fit(ds); err != nil {
		return err
	}
	t.tr = tr
	return nil
}

// Transform fuses every pixel of ds with the fitted model.
func (t *MOGPRTransformer) Transform(ds *cube.Dataset) (*cube.Dataset, error) {
	if t.tr == nil {
		return nil, mogpr.ErrNotFitted
	}
	return t.tr.Transform(ds)
}

func (t *MOGPRTransformer) FitTransform(ds *cube.Dataset, params udf.Context) (*cube.Dataset, error) {
	if err := t.Fit(ds, params); err != nil {
		return nil, err
	}
	return t.Transform(ds)
}

// FusionModel returns the fitted fusion model or nil.
func (t *MOGPRTransformer) FusionModel() *mogpr.Model {
	if t.tr == nil {
		return nil
	}
	return t.tr.Model()
}
