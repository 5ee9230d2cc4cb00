package whittaker

import (
	"math"

	mat_ "github.com/Open-EO/FuseTS/mat"
)

const (
	logLambdaGridStep = 0.1
	logLambdaTol      = 1e-3
)

var invGoldenRatio = (math.Sqrt(5) - 1) / 2

// gcv returns the generalized cross validation score (RSS/m) / (1 - tr(H)/m)^2 for lambda where
// the hat matrix diagonal is w_i * (A^-1)_ii at the observed positions.
func (g *grid) gcv(lambda float64) float64 {
	chol, err := g.factorize(lambda)
	if err != nil {
		return math.Inf(1)
	}
	z, err := g.solve(chol)
	if err != nil {
		return math.Inf(1)
	}

	a, err := mat_.NewPenalizedBand(g.w, lambda)
	if err != nil {
		return math.Inf(1)
	}
	invDiag, err := mat_.BandInverseDiag(a)
	if err != nil {
		return math.Inf(1)
	}

	m := len(g.obs)
	var rss, trace float64
	for _, pos := range g.obs {
		r := g.y[pos] - z[pos]
		rss += g.w[pos] * r * r
		trace += g.w[pos] * invDiag[pos]
	}

	mf := float64(m)
	denom := 1 - trace/mf
	if denom <= 0 {
		return math.Inf(1)
	}
	return (rss / mf) / (denom * denom)
}

// searchLambda scans log10 lambda over [lo, hi] in steps of 0.1 and refines the best grid point with
// a golden section search on its neighbouring interval.
func (g *grid) searchLambda(lo, hi float64) (float64, error) {
	f := func(logLambda float64) float64 {
		return g.gcv(math.Pow(10, logLambda))
	}

	nSteps := int(math.Floor((hi-lo)/logLambdaGridStep + 1e-9))
	points := make([]float64, 0, nSteps+2)
	for i := 0; i <= nSteps; i++ {
		points = append(points, lo+float64(i)*logLambdaGridStep)
	}
	if hi-points[len(points)-1] > 1e-9 {
		points = append(points, hi)
	}

	best, bestScore := 0, math.Inf(1)
	for i, p := range points {
		if score := f(p); score < bestScore {
			best, bestScore = i, score
		}
	}
	if math.IsInf(bestScore, 1) {
		return 0, ErrNotPosDef
	}
	if len(points) < 2 {
		return math.Pow(10, points[best]), nil
	}

	a := points[max(best-1, 0)]
	b := points[min(best+1, len(points)-1)]
	x, score := goldenSection(f, a, b, logLambdaTol)
	if score < bestScore {
		return math.Pow(10, x), nil
	}
	return math.Pow(10, points[best]), nil
}

// goldenSection minimizes a unimodal f on [a, b] until the interval is narrower than tol.
func goldenSection(f func(float64) float64, a, b, tol float64) (float64, float64) {
	c := b - invGoldenRatio*(b-a)
	d := a + invGoldenRatio*(b-a)
	fc, fd := f(c), f(d)
	for b-a > tol {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invGoldenRatio*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invGoldenRatio*(b-a)
			fd = f(d)
		}
	}
	if fc < fd {
		return c, fc
	}
	return d, fd
}
