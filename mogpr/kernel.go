package mogpr

import "math"

var sqrt3 = math.Sqrt(3)

// matern32 returns the Matern 3/2 covariance at distance r along with its derivative with respect to
// the log lengthscale.
func matern32(r, lengthscale, variance float64) (float64, float64) {
	a := sqrt3 * math.Abs(r) / lengthscale
	e := math.Exp(-a)
	return variance * (1 + a) * e, variance * a * a * e
}
