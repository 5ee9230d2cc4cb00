package linearmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// annualDesign returns the rows [t, cos(wt), sin(wt)] of a year sampled every stepDays along with
// the noiseless target intercept + coef . row.
func annualDesign(n, stepDays int, intercept float64, coef []float64) ([][]float64, []float64) {
	omega := 2 * math.Pi / 365.25
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		t := float64(i * stepDays)
		x[i] = []float64{t, math.Cos(omega * t), math.Sin(omega * t)}
		y[i] = intercept
		for j, c := range coef {
			y[i] += c * x[i][j]
		}
	}
	return x, y
}

func testModel(t *testing.T, model Model, x, y mat.Matrix, intercept float64, coef []float64, tol float64) {
	err := model.Fit(x, y)
	require.Nil(t, err)

	assert.InDelta(t, intercept, model.Intercept(), tol, "intercept")
	assert.InDeltaSlice(t, coef, model.Coef(), tol, "coefficients")

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, tol, "score")
}
