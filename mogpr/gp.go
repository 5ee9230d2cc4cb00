package mogpr

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	jitterRetries = 5
	jitterScale   = 1e-6
)

var ErrNotPosDef = errors.New("covariance matrix is not positive definite")

// trainingSet stacks the normalized observations of every output
type trainingSet struct {
	numOutputs int

	// origin is subtracted from every day to keep distances well scaled
	origin float64
	days   []float64
	output []int
	y      []float64
}

func (ts *trainingSet) len() int {
	return len(ts.y)
}

// span returns the number of days covered by the observations
func (ts *trainingSet) span() float64 {
	if len(ts.days) == 0 {
		return 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range ts.days {
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return hi - lo
}

// covariance builds B(o_i, o_j) * k(t_i, t_j) plus the output noise on the diagonal
func (ts *trainingSet) covariance(m *Model, jitter float64) *mat.SymDense {
	n := ts.len()
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			base, _ := matern32(ts.days[i]-ts.days[j], m.Lengthscale, m.Variance)
			val := m.B(ts.output[i], ts.output[j]) * base
			if i == j {
				val += m.Noise[ts.output[i]] + jitter
			}
			k.SetSym(i, j, val)
		}
	}
	return k
}

// gp is a model conditioned on a training set
type gp struct {
	model *Model
	ts    *trainingSet
	chol  mat.Cholesky
	alpha *mat.VecDense
}

// newGP factorizes the training covariance, retrying with a growing diagonal jitter when the
// factorization fails.
func newGP(m *Model, ts *trainingSet) (*gp, error) {
	g := &gp{model: m, ts: ts}
	jitter := 0.0
	for attempt := 0; ; attempt++ {
		if g.chol.Factorize(ts.covariance(m, jitter)) {
			break
		}
		if attempt == jitterRetries {
			return nil, fmt.Errorf("after %d jitter retries, %w", jitterRetries, ErrNotPosDef)
		}
		jitter = jitterScale * math.Pow(10, float64(attempt)) * (m.Variance*maxB(m) + 1)
	}

	g.alpha = mat.NewVecDense(ts.len(), nil)
	if err := g.chol.SolveVecTo(g.alpha, mat.NewVecDense(ts.len(), ts.y)); err != nil && !isCondition(err) {
		return nil, err
	}
	return g, nil
}

func maxB(m *Model) float64 {
	b := 0.0
	for i := range m.W {
		b = math.Max(b, m.B(i, i))
	}
	return b
}

func isCondition(err error) bool {
	var cond mat.Condition
	return errors.As(err, &cond)
}

// negLogLikelihood returns the negative log marginal likelihood of the training data.
func (g *gp) negLogLikelihood() float64 {
	n := float64(g.ts.len())
	fit := mat.Dot(mat.NewVecDense(g.ts.len(), g.ts.y), g.alpha)
	return 0.5*fit + 0.5*g.chol.LogDet() + 0.5*n*math.Log(2*math.Pi)
}

// gradient returns the derivative of the negative log marginal likelihood with respect to the
// optimization parameters, 0.5 * tr((K^-1 - alpha*alpha') dK).
func (g *gp) gradient() ([]float64, error) {
	ts, m := g.ts, g.model
	n, no := ts.len(), ts.numOutputs

	var kinv mat.SymDense
	if err := g.chol.InverseTo(&kinv); err != nil && !isCondition(err) {
		return nil, err
	}

	grad := make([]float64, 2+3*no)
	for i := 0; i < n; i++ {
		oi := ts.output[i]
		for j := 0; j <= i; j++ {
			oj := ts.output[j]
			q := kinv.At(i, j) - g.alpha.AtVec(i)*g.alpha.AtVec(j)
			if i != j {
				q *= 2
			}
			base, dLength := matern32(ts.days[i]-ts.days[j], m.Lengthscale, m.Variance)
			b := m.B(oi, oj)

			grad[0] += q * b * dLength
			grad[1] += q * b * base
			grad[2+oi] += q * m.W[oj] * base
			grad[2+oj] += q * m.W[oi] * base
			if oi == oj {
				grad[2+no+oi] += q * m.Kappa[oi] * base
			}
			if i == j {
				grad[2+2*no+oi] += q * (m.Noise[oi] - minNoise)
			}
		}
	}
	for p := range grad {
		grad[p] *= 0.5
	}
	return grad, nil
}

// predict returns the posterior mean and predictive variance, including the output noise, of one
// output at the given days.
func (g *gp) predict(days []float64, out int) ([]float64, []float64, error) {
	ts, m := g.ts, g.model
	n := ts.len()
	mean := make([]float64, len(days))
	variance := make([]float64, len(days))
	if len(days) == 0 {
		return mean, variance, nil
	}

	cross := mat.NewDense(n, len(days), nil)
	for i := 0; i < n; i++ {
		b := m.B(ts.output[i], out)
		for s, day := range days {
			base, _ := matern32(ts.days[i]-(day-ts.origin), m.Lengthscale, m.Variance)
			cross.Set(i, s, b*base)
		}
	}

	var solved mat.Dense
	if err := g.chol.SolveTo(&solved, cross); err != nil && !isCondition(err) {
		return nil, nil, err
	}

	prior := m.B(out, out)*m.Variance + m.Noise[out]
	for s := range days {
		var mu, reduction float64
		for i := 0; i < n; i++ {
			c := cross.At(i, s)
			mu += c * g.alpha.AtVec(i)
			reduction += c * solved.At(i, s)
		}
		mean[s] = mu
		variance[s] = math.Max(prior-reduction, 0)
	}
	return mean, variance, nil
}
