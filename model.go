package fusets

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Open-EO/FuseTS/mogpr"
	"github.com/Open-EO/FuseTS/udf"
	"github.com/goccy/go-json"
)

var ErrNoFusionModel = errors.New("mogpr model has no fitted fusion model")

// Model is the serializable state of a transformer: its process, stored parameters and, for mogpr,
// the fitted fusion model.
type Model struct {
	Process string       `json:"process"`
	Params  udf.Context  `json:"params,omitempty"`
	Fusion  *mogpr.Model `json:"fusion,omitempty"`
}

// Model returns the serializable state of the transformer.
func (t *ProcessTransformer) Model() Model {
	return Model{Process: t.process, Params: t.Params()}
}

// Model returns the serializable state of the transformer. The fusion model is only set after Fit.
func (t *MOGPRTransformer) Model() Model {
	return Model{Process: udf.ProcessMOGPR, Params: t.Params(), Fusion: t.FusionModel()}
}

// NewFromModel creates a transformer from a pre-existing model. This should be generated from a
// previous transformer call to Model(). A mogpr model yields a fitted *MOGPRTransformer.
func NewFromModel(model Model, opt *Options) (Transformer, error) {
	if model.Process != udf.ProcessMOGPR {
		t, err := NewProcessTransformer(model.Process, opt)
		if err != nil {
			return nil, err
		}
		if err := t.SetParams(model.Params); err != nil {
			return nil, fmt.Errorf("unable to load parameters, %w", err)
		}
		return t, nil
	}

	if model.Fusion == nil {
		return nil, ErrNoFusionModel
	}
	t := NewMOGPR(opt)
	if err := t.SetParams(model.Params); err != nil {
		return nil, fmt.Errorf("unable to load parameters, %w", err)
	}
	tropt, err := t.options(nil)
	if err != nil {
		return nil, err
	}
	tr, err := mogpr.NewTransformerFromModel(tropt, model.Fusion)
	if err != nil {
		return nil, fmt.Errorf("unable to load fusion model, %w", err)
	}
	t.tr = tr
	return t, nil
}

// WriteModel encodes a model as indented JSON.
func WriteModel(w io.Writer, m Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// ReadModel decodes a JSON model.
func ReadModel(r io.Reader) (Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Model{}, err
	}
	if m.Fusion != nil {
		if err := m.Fusion.Validate(); err != nil {
			return Model{}, err
		}
	}
	return m, nil
}

// LoadModel reads a JSON model file.
func LoadModel(path string) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return Model{}, err
	}
	defer f.Close()
	return ReadModel(f)
}

// SaveModel writes a model to a JSON file.
func SaveModel(path string, m Model) error {
	bytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0o644)
}
