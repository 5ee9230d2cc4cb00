package mat

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyWeights  = errors.New("no weights to build penalized system")
	ErrNotPosDefBand = errors.New("band matrix is not positive definite")
)

// secondDiff holds the coefficients of the second order difference operator D.
var secondDiff = [3]float64{1, -2, 1}

// NewPenalizedBand returns the symmetric banded matrix W + lambda*D'D where W is the diagonal of
// weights and D the second order difference operator of size (n-2) x n. The bandwidth is 2 except
// for series shorter than 3 points where no difference can be formed.
func NewPenalizedBand(w []float64, lambda float64) (*mat.SymBandDense, error) {
	n := len(w)
	if n == 0 {
		return nil, ErrEmptyWeights
	}

	k := 2
	if n < 3 {
		k = n - 1
	}
	a := mat.NewSymBandDense(n, k, nil)
	for i, wi := range w {
		a.SetSymBand(i, i, wi)
	}

	// every row of D touches three consecutive points, accumulate its outer product
	for r := 0; r+2 < n; r++ {
		for p := 0; p < 3; p++ {
			for q := p; q < 3; q++ {
				i, j := r+p, r+q
				a.SetSymBand(i, j, a.At(i, j)+lambda*secondDiff[p]*secondDiff[q])
			}
		}
	}
	return a, nil
}

// SecondDiffNorm returns the squared norm of the second order differences of z, ||Dz||^2.
func SecondDiffNorm(z []float64) float64 {
	var sum float64
	for i := 0; i+2 < len(z); i++ {
		d := z[i] - 2*z[i+1] + z[i+2]
		sum += d * d
	}
	return sum
}

// BandInverseDiag returns the diagonal of the inverse of the symmetric positive definite band matrix
// a without forming the inverse. It factors a = U'U and runs the Takahashi recurrence restricted to
// the band, taking O(n*k^2) time and O(n*k) memory.
func BandInverseDiag(a mat.SymBanded) ([]float64, error) {
	n, k := a.SymBand()
	if n == 0 {
		return nil, ErrEmptyWeights
	}

	// u[i][d] holds U(i, i+d)
	u := make([][]float64, n)
	for i := range u {
		u[i] = make([]float64, k+1)
	}
	upper := func(i, j int) float64 {
		if j < i || j-i > k {
			return 0
		}
		return u[i][j-i]
	}
	for i := 0; i < n; i++ {
		diag := a.At(i, i)
		for l := max(0, i-k); l < i; l++ {
			diag -= upper(l, i) * upper(l, i)
		}
		if diag <= 0 || math.IsNaN(diag) {
			return nil, ErrNotPosDefBand
		}
		u[i][0] = math.Sqrt(diag)
		for j := i + 1; j <= min(i+k, n-1); j++ {
			v := a.At(i, j)
			for l := max(0, j-k); l < i; l++ {
				v -= upper(l, i) * upper(l, j)
			}
			u[i][j-i] = v / u[i][0]
		}
	}

	// s[i][d] holds inv(a)(i, i+d)
	s := make([][]float64, n)
	for i := range s {
		s[i] = make([]float64, k+1)
	}
	sigma := func(i, j int) float64 {
		if i > j {
			i, j = j, i
		}
		return s[i][j-i]
	}
	for i := n - 1; i >= 0; i-- {
		last := min(i+k, n-1)
		for j := last; j >= i; j-- {
			var sum float64
			for l := i + 1; l <= last; l++ {
				sum += u[i][l-i] * sigma(l, j)
			}
			v := -sum
			if j == i {
				v += 1 / u[i][0]
			}
			s[i][j-i] = v / u[i][0]
		}
	}

	res := make([]float64, n)
	for i := range res {
		res[i] = s[i][0]
	}
	return res, nil
}
