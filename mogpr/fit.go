package mogpr

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const (
	initVariance = 1.0
	initKappa    = 0.5
	initNoise    = 1.0
	initWScale   = 0.5

	// pcgStream is the fixed PCG stream, the per call seed selects the sequence
	pcgStream = 0x6d6f677072
)

var ErrOptimization = errors.New("unable to optimize the marginal likelihood")

// objective evaluates the negative log marginal likelihood and its gradient, remembering the last
// location since the optimizer requests the value and the gradient separately.
type objective struct {
	ts *trainingSet

	x    []float64
	f    float64
	grad []float64
}

func (o *objective) evaluate(x []float64) {
	if o.x != nil && floats.Equal(o.x, x) {
		return
	}
	o.x = append(o.x[:0], x...)
	o.f = math.Inf(1)
	o.grad = make([]float64, len(x))

	// the optimizer evaluates on its own goroutine so numeric panics have to be contained here
	defer func() {
		if r := recover(); r != nil {
			o.f = math.Inf(1)
			o.grad = make([]float64, len(x))
		}
	}()

	g, err := newGP(modelFromParams(x, o.ts.numOutputs), o.ts)
	if err != nil {
		return
	}
	grad, err := g.gradient()
	if err != nil {
		return
	}
	f := g.negLogLikelihood()
	if math.IsNaN(f) || hasNonFinite(grad) {
		return
	}
	o.f = f
	o.grad = grad
}

func (o *objective) problem() optimize.Problem {
	return optimize.Problem{
		Func: func(x []float64) float64 {
			o.evaluate(x)
			return o.f
		},
		Grad: func(grad, x []float64) {
			o.evaluate(x)
			copy(grad, o.grad)
		},
	}
}

func hasNonFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// initialModel returns the optimization starting point. Only the coregionalization weights are
// random.
func initialModel(ts *trainingSet, rng *rand.Rand) *Model {
	m := &Model{
		Lengthscale: math.Max(ts.span()/10, 1),
		Variance:    initVariance,
		W:           make([]float64, ts.numOutputs),
		Kappa:       make([]float64, ts.numOutputs),
		Noise:       make([]float64, ts.numOutputs),
	}
	for i := 0; i < ts.numOutputs; i++ {
		m.W[i] = initWScale * rng.NormFloat64()
		m.Kappa[i] = initKappa
		m.Noise[i] = initNoise
	}
	return m
}

// fit maximizes the marginal likelihood of the training set with L-BFGS.
func fit(ts *trainingSet, rng *rand.Rand, maxIterations int) (*Model, error) {
	obj := &objective{ts: ts}
	x0 := initialModel(ts, rng).params()

	settings := &optimize.Settings{
		MajorIterations:   maxIterations,
		GradientThreshold: 1e-5,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Relative:   1e-9,
			Iterations: 20,
		},
	}
	res, err := optimize.Minimize(obj.problem(), x0, settings, &optimize.LBFGS{})
	if res == nil {
		return nil, fmt.Errorf("%v, %w", err, ErrOptimization)
	}
	if math.IsInf(res.F, 0) || math.IsNaN(res.F) || hasNonFinite(res.X) {
		return nil, fmt.Errorf("final value %f after %d iterations, %w", res.F, res.MajorIterations, ErrOptimization)
	}

	return modelFromParams(res.X, ts.numOutputs), nil
}
