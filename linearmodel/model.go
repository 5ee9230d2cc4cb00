// Package linearmodel holds the linear regressions used to fit harmonic curves
package linearmodel

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrTargetLenMismatch  = errors.New("target length does not match target rows")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrUnderdetermined    = errors.New("fewer observations than features")
	ErrSingular           = errors.New("design matrix is rank deficient")
)

// Model is a fitted linear regression
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

// withIntercept prepends a constant 1.0 column to x
func withIntercept(x mat.Matrix) mat.Matrix {
	m, _ := x.Dims()
	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	onesMx := mat.NewDense(1, m, ones)

	var xWithOnes mat.Dense
	xWithOnes.Stack(onesMx, x.T())
	return xWithOnes.T()
}

func validateTraining(x, y mat.Matrix) error {
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return errTargetLen(m, ym)
	}
	return nil
}

// predict computes x * [intercept, coef...]
func predict(x mat.Matrix, intercept float64, coef []float64, fitIntercept bool) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	c := coef
	if fitIntercept {
		c = append([]float64{intercept}, coef...)
		x = withIntercept(x)
	}
	_, xn := x.Dims()
	if xn != len(c) {
		return nil, errFeatureLen(xn, len(c))
	}

	m, _ := x.Dims()
	res := mat.NewVecDense(m, nil)
	res.MulVec(x, mat.NewVecDense(len(c), c))
	return res.RawVector().Data, nil
}
