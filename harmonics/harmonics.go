// Package harmonics fits a linear trend plus annual harmonics to each time series, the model used by
// continuous change detection to describe the seasonal cycle of a pixel.
package harmonics

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Open-EO/FuseTS/linearmodel"
	mat_ "github.com/Open-EO/FuseTS/mat"
	"github.com/Open-EO/FuseTS/timedataset"
	"gonum.org/v1/gonum/mat"
)

// AngularFrequency is the annual angular frequency in radians per day.
const AngularFrequency = 2 * math.Pi / timedataset.DaysPerYear

// Result holds the fitted coefficients of one series
type Result struct {
	// Origin is the date the day offsets of the regressors are measured from
	Origin time.Time

	Intercept float64
	Coef      []float64
}

// Coefficients returns the intercept followed by the regressor coefficients.
func (r *Result) Coefficients() []float64 {
	return append([]float64{r.Intercept}, r.Coef...)
}

// Predict evaluates the fitted curve at the given dates.
func (r *Result) Predict(t []time.Time) []float64 {
	origin := timedataset.DayOrdinal(r.Origin)
	res := make([]float64, len(t))
	for i, ts := range t {
		row := regressors(float64(timedataset.DayOrdinal(ts)-origin), len(r.Coef))
		val := r.Intercept
		for j, c := range r.Coef {
			val += c * row[j]
		}
		res[i] = val
	}
	return res
}

// BandNames returns the label of every coefficient for a fit with n coefficients, e.g.
// intercept, slope, cos1, sin1, cos2, sin2.
func BandNames(n int) []string {
	names := []string{"intercept", "slope"}
	for k := 1; len(names) < n; k++ {
		order := strconv.Itoa(k)
		names = append(names, "cos"+order)
		if len(names) < n {
			names = append(names, "sin"+order)
		}
	}
	return names[:n]
}

// regressors returns the n non constant features of a single day offset
func regressors(day float64, n int) []float64 {
	row := make([]float64, 0, n)
	if n > 0 {
		row = append(row, day)
	}
	for k := 1; len(row) < n; k++ {
		rad := float64(k) * AngularFrequency * day
		row = append(row, math.Cos(rad))
		if len(row) < n {
			row = append(row, math.Sin(rad))
		}
	}
	return row
}

// Fit regresses y on a linear trend and harmonics of the day offset from the first date. Missing
// values are ignored.
func Fit(t []time.Time, y []float64, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return nil, err
	}
	origin := timedataset.DayOrdinal(td.T[0])

	valid := td.DropNan()
	nFeatures := opt.NumCoefficients - 1
	rows := make([][]float64, 0, len(valid.T))
	for _, ts := range valid.T {
		rows = append(rows, regressors(float64(timedataset.DayOrdinal(ts)-origin), nFeatures))
	}
	if len(rows) < opt.NumCoefficients {
		return nil, fmt.Errorf("%d observations for %d coefficients, %w", len(rows), opt.NumCoefficients, linearmodel.ErrUnderdetermined)
	}
	x, err := mat_.NewDenseFromArray(rows)
	if err != nil {
		return nil, err
	}
	target := mat.NewDense(len(valid.Y), 1, valid.Y)

	model, err := fitModel(x, target, opt)
	if err != nil {
		return nil, err
	}
	return &Result{
		Origin:    td.T[0],
		Intercept: model.Intercept(),
		Coef:      model.Coef(),
	}, nil
}

func fitModel(x, y mat.Matrix, opt *Options) (linearmodel.Model, error) {
	ols, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
	if err != nil {
		return nil, err
	}
	olsErr := ols.Fit(x, y)
	if opt.Regularization == 0 {
		return ols, olsErr
	}

	lassoOpt := linearmodel.NewDefaultLassoOptions()
	lassoOpt.Lambda = opt.Regularization
	if olsErr == nil {
		lassoOpt.WarmStartBeta = append([]float64{ols.Intercept()}, ols.Coef()...)
	}
	lasso, err := linearmodel.NewLassoRegression(lassoOpt)
	if err != nil {
		return nil, err
	}
	if err := lasso.Fit(x, y); err != nil {
		return nil, err
	}
	return lasso, nil
}
