package mogpr

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/goccy/go-json"
)

// minNoise keeps the output noise variances away from zero so the covariance stays well conditioned
const minNoise = 1e-6

var (
	ErrInvalidModel   = errors.New("invalid model hyperparameters")
	ErrOutputMismatch = errors.New("model output count does not match the number of series")
)

// Model holds the hyperparameters of an intrinsic coregionalization model with a Matern 3/2 base
// kernel and a rank one coregionalization matrix B = w*w' + diag(kappa). A fitted model is never
// mutated and may be shared between goroutines.
type Model struct {
	Lengthscale float64   `json:"lengthscale"`
	Variance    float64   `json:"variance"`
	W           []float64 `json:"w"`
	Kappa       []float64 `json:"kappa"`
	Noise       []float64 `json:"noise"`

	// LogLikelihood is the log marginal likelihood of the training data the model was fit on
	LogLikelihood float64 `json:"log_likelihood"`
}

// NumOutputs returns the number of coregionalized outputs.
func (m *Model) NumOutputs() int {
	return len(m.W)
}

// Validate checks that every hyperparameter is finite and the per output slices agree in length.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("nil model, %w", ErrInvalidModel)
	}
	n := len(m.W)
	if n == 0 || len(m.Kappa) != n || len(m.Noise) != n {
		return fmt.Errorf("w, kappa and noise lengths %d, %d, %d, %w", len(m.W), len(m.Kappa), len(m.Noise), ErrInvalidModel)
	}
	if !(m.Lengthscale > 0) || !(m.Variance > 0) || math.IsInf(m.Lengthscale, 0) || math.IsInf(m.Variance, 0) {
		return fmt.Errorf("lengthscale %f variance %f, %w", m.Lengthscale, m.Variance, ErrInvalidModel)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(m.W[i]) || math.IsInf(m.W[i], 0) {
			return fmt.Errorf("w[%d] = %f, %w", i, m.W[i], ErrInvalidModel)
		}
		if m.Kappa[i] < 0 || m.Noise[i] < 0 || math.IsNaN(m.Kappa[i]) || math.IsNaN(m.Noise[i]) {
			return fmt.Errorf("kappa[%d] = %f noise[%d] = %f, %w", i, m.Kappa[i], i, m.Noise[i], ErrInvalidModel)
		}
	}
	return nil
}

// B returns the coregionalization between outputs i and j.
func (m *Model) B(i, j int) float64 {
	b := m.W[i] * m.W[j]
	if i == j {
		b += m.Kappa[i]
	}
	return b
}

func (m *Model) copy() *Model {
	return &Model{
		Lengthscale:   m.Lengthscale,
		Variance:      m.Variance,
		W:             append([]float64{}, m.W...),
		Kappa:         append([]float64{}, m.Kappa...),
		Noise:         append([]float64{}, m.Noise...),
		LogLikelihood: m.LogLikelihood,
	}
}

// params maps the model onto the unconstrained optimization vector
// [log lengthscale, log variance, w..., log kappa..., log(noise - minNoise)...].
func (m *Model) params() []float64 {
	n := m.NumOutputs()
	x := make([]float64, 0, 2+3*n)
	x = append(x, math.Log(m.Lengthscale), math.Log(m.Variance))
	x = append(x, m.W...)
	for _, k := range m.Kappa {
		x = append(x, math.Log(k))
	}
	for _, noise := range m.Noise {
		x = append(x, math.Log(math.Max(noise-minNoise, minNoise)))
	}
	return x
}

// modelFromParams is the inverse of params.
func modelFromParams(x []float64, numOutputs int) *Model {
	m := &Model{
		Lengthscale: math.Exp(x[0]),
		Variance:    math.Exp(x[1]),
		W:           make([]float64, numOutputs),
		Kappa:       make([]float64, numOutputs),
		Noise:       make([]float64, numOutputs),
	}
	copy(m.W, x[2:2+numOutputs])
	for i := 0; i < numOutputs; i++ {
		m.Kappa[i] = math.Exp(x[2+numOutputs+i])
		m.Noise[i] = math.Exp(x[2+2*numOutputs+i]) + minNoise
	}
	return m
}

// WriteModel encodes a model as JSON.
func WriteModel(w io.Writer, m *Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// ReadModel decodes and validates a JSON model.
func ReadModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadModel reads a JSON model file.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadModel(f)
}

// SaveModel writes a model to a JSON file.
func SaveModel(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteModel(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
