// Package whittaker smooths and gap fills irregular time series with the Whittaker penalized least
// squares smoother on a daily grid.
package whittaker

import (
	"errors"
	"fmt"
	"math"
	"time"

	mat_ "github.com/Open-EO/FuseTS/mat"
	"github.com/Open-EO/FuseTS/timedataset"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInsufficientData = errors.New("at least two valid observations are required")
	ErrNotPosDef        = errors.New("penalized system is not positive definite")
)

// Result holds the dense daily reconstruction and its subsampled version
type Result struct {
	Dates  []time.Time
	Values []float64

	SampledDates  []time.Time
	SampledValues []float64

	// Lambda is the smoothing strength that was applied, searched or given
	Lambda float64
}

// ValuesAt returns the reconstruction at the day of each date. Dates outside the grid are NaN.
func (r *Result) ValuesAt(dates []time.Time) []float64 {
	out := make([]float64, len(dates))
	if len(r.Dates) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	first := timedataset.DayOrdinal(r.Dates[0])
	for i, d := range dates {
		pos := timedataset.DayOrdinal(d) - first
		if pos < 0 || pos >= len(r.Values) {
			out[i] = math.NaN()
			continue
		}
		out[i] = r.Values[pos]
	}
	return out
}

// grid places the observations on a daily grid spanning the first to the last date. Observations
// falling on the same day keep the last value.
type grid struct {
	start time.Time
	w     []float64
	y     []float64
	obs   []int
}

func newGrid(t []time.Time, y []float64) (*grid, error) {
	if len(y) == 0 {
		return nil, ErrInsufficientData
	}
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return nil, err
	}

	ordinals := timedataset.TimeSlice(td.T).DayOrdinals()
	first := ordinals[0]
	n := ordinals[len(ordinals)-1] - first + 1

	g := &grid{
		start: td.T[0],
		w:     make([]float64, n),
		y:     make([]float64, n),
	}
	for i, val := range td.Y {
		if math.IsNaN(val) {
			continue
		}
		pos := ordinals[i] - first
		g.w[pos] = 1
		g.y[pos] = val
	}
	for pos, wi := range g.w {
		if wi > 0 {
			g.obs = append(g.obs, pos)
		}
	}
	if len(g.obs) < 2 {
		return nil, fmt.Errorf("got %d, %w", len(g.obs), ErrInsufficientData)
	}
	return g, nil
}

// factorize builds and factors W + lambda*D'D
func (g *grid) factorize(lambda float64) (*mat.BandCholesky, error) {
	a, err := mat_.NewPenalizedBand(g.w, lambda)
	if err != nil {
		return nil, err
	}
	chol := new(mat.BandCholesky)
	if ok := chol.Factorize(a); !ok {
		return nil, fmt.Errorf("lambda %g, %w", lambda, ErrNotPosDef)
	}
	return chol, nil
}

func (g *grid) solve(chol *mat.BandCholesky) ([]float64, error) {
	n := len(g.w)
	wy := make([]float64, n)
	for i := range wy {
		wy[i] = g.w[i] * g.y[i]
	}
	z := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(z, mat.NewVecDense(n, wy)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, err
		}
	}
	return z.RawVector().Data, nil
}

// Smooth reconstructs the series on a daily grid. NaN values receive zero weight. With
// LogLambdaBounds set, lambda is chosen by minimizing the generalized cross validation score.
func Smooth(t []time.Time, y []float64, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	g, err := newGrid(t, y)
	if err != nil {
		return nil, err
	}

	lambda := opt.Lambda
	if opt.Auto() {
		lambda, err = g.searchLambda(opt.LogLambdaBounds[0], opt.LogLambdaBounds[1])
		if err != nil {
			return nil, err
		}
	}

	chol, err := g.factorize(lambda)
	if err != nil {
		return nil, err
	}
	z, err := g.solve(chol)
	if err != nil {
		return nil, err
	}

	n := len(z)
	res := &Result{
		Dates:  make([]time.Time, n),
		Values: z,
		Lambda: lambda,
	}
	for i := range res.Dates {
		res.Dates[i] = g.start.AddDate(0, 0, i)
	}

	nSamples := (n + opt.Step - 1) / opt.Step
	res.SampledDates = make([]time.Time, 0, nSamples)
	res.SampledValues = make([]float64, 0, nSamples)
	for i := 0; i < nSamples; i++ {
		res.SampledDates = append(res.SampledDates, res.Dates[i*opt.Step])
		res.SampledValues = append(res.SampledValues, z[i*opt.Step])
	}
	return res, nil
}
