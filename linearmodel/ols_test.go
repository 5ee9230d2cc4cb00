package linearmodel

import (
	"testing"

	mat_ "github.com/Open-EO/FuseTS/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLSOptionsValidate(t *testing.T) {
	opt, err := (*OLSOptions)(nil).Validate()
	require.Nil(t, err)
	assert.Equal(t, NewDefaultOLSOptions(), opt)
}

func TestOLSRegression(t *testing.T) {
	tol := 1e-5
	testData := map[string]struct {
		x         [][]float64
		y         []float64
		opt       *OLSOptions
		intercept float64
		coef      []float64
	}{
		"ols model intercept": {
			x: [][]float64{
				{0, 0},
				{3, 5},
				{9, 20},
				{12, 6},
				{15, 10},
			},
			y:         []float64{2, 31, 109, 62, 87},
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
		"ols model no intercept": {
			x: [][]float64{
				{1, 0, 0},
				{1, 3, 5},
				{1, 9, 20},
				{1, 12, 6},
				{1, 15, 10},
			},
			y: []float64{2, 31, 109, 62, 87},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			intercept: 0.0,
			coef:      []float64{2.0, 3.0, 4.0},
		},
	}
	x, y := annualDesign(73, 5, 0.35, []float64{0.0002, -0.2, 0.05})
	testData["annual ndvi harmonic"] = struct {
		x         [][]float64
		y         []float64
		opt       *OLSOptions
		intercept float64
		coef      []float64
	}{x: x, y: y, intercept: 0.35, coef: []float64{0.0002, -0.2, 0.05}}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := mat_.NewDenseFromArray(td.x)
			require.Nil(t, err)

			y := mat.NewDense(len(td.y), 1, td.y)

			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)

			testModel(t, model, x, y, td.intercept, td.coef, tol)
		})
	}
}

func TestOLSRegressionErrors(t *testing.T) {
	testData := map[string]struct {
		x   [][]float64
		y   []float64
		err error
	}{
		"underdetermined": {
			x:   [][]float64{{1, 2}, {3, 4}},
			y:   []float64{1, 2},
			err: ErrUnderdetermined,
		},
		"target mismatch": {
			x:   [][]float64{{1}, {2}, {3}},
			y:   []float64{1, 2},
			err: ErrTargetLenMismatch,
		},
		"collinear": {
			x:   [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}},
			y:   []float64{1, 2, 3, 4},
			err: ErrSingular,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := mat_.NewDenseFromArray(td.x)
			require.Nil(t, err)

			model, err := NewOLSRegression(nil)
			require.Nil(t, err)

			err = model.Fit(x, mat.NewDense(len(td.y), 1, td.y))
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestOLSPredictFeatureMismatch(t *testing.T) {
	model, err := NewOLSRegression(nil)
	require.Nil(t, err)

	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	require.Nil(t, model.Fit(x, mat.NewDense(3, 1, []float64{2, 4, 6})))

	_, err = model.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)

	_, err = model.Predict(nil)
	assert.ErrorIs(t, err, ErrNoDesignMatrix)
}

func BenchmarkOLSRegression(b *testing.B) {
	x, y := generateBenchData(1000, 20)
	for b.Loop() {
		model, err := NewOLSRegression(&OLSOptions{FitIntercept: false})
		if err != nil {
			b.Fatal(err)
		}
		if err := model.Fit(x, y); err != nil {
			b.Fatal(err)
		}
	}
}

func generateBenchData(nObs, nFeat int) (mat.Matrix, mat.Matrix) {
	x := mat.NewDense(nObs, nFeat, nil)
	y := mat.NewDense(nObs, 1, nil)
	for i := 0; i < nObs; i++ {
		var target float64
		for j := 0; j < nFeat; j++ {
			val := float64((i*7+j*13)%97) / 97.0
			if j == 0 {
				val = 1.0
			}
			x.Set(i, j, val)
			target += float64(j+1) * val
		}
		y.Set(i, 0, target)
	}
	return x, y
}
