// Package mogpr fuses several correlated time series with a multi output Gaussian process. Every
// series is modeled through a shared Matern 3/2 process coupled by a learned coregionalization so
// that gaps in one series are filled from the others.
package mogpr

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooFewVariables = errors.New("fusion needs at least two variables")
	ErrInvalidMaster   = errors.New("master index out of range")
	ErrLenMismatch     = errors.New("days and values have different lengths")
)

// Series is one input signal. Days are day ordinals and NaN values are missing observations.
type Series struct {
	Days   []float64
	Values []float64
}

// Result holds the fused mean and standard deviation of every series at the output days. OK is false
// when the fit or the prediction failed, in which case every value is NaN.
type Result struct {
	Mean [][]float64
	Std  [][]float64
	OK   bool

	Model *Model
}

func nanResult(numSeries, numDays int) *Result {
	res := &Result{
		Mean: make([][]float64, numSeries),
		Std:  make([][]float64, numSeries),
	}
	for i := 0; i < numSeries; i++ {
		res.Mean[i] = make([]float64, numDays)
		res.Std[i] = make([]float64, numDays)
		floats.AddConst(math.NaN(), res.Mean[i])
		floats.AddConst(math.NaN(), res.Std[i])
	}
	return res
}

// normalization holds the statistics used to standardize a series
type normalization struct {
	mean  float64
	std   float64
	count int
}

func newTrainingSet(series []Series) (*trainingSet, []normalization) {
	ts := &trainingSet{numOutputs: len(series), origin: math.Inf(1)}
	norms := make([]normalization, len(series))
	for out, s := range series {
		var days, vals []float64
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			days = append(days, s.Days[i])
			vals = append(vals, v)
		}
		norms[out] = normalization{mean: math.NaN(), std: 1, count: len(vals)}
		if len(vals) == 0 {
			continue
		}
		mean, std := stat.PopMeanStdDev(vals, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		norms[out].mean, norms[out].std = mean, std

		for i, v := range vals {
			ts.days = append(ts.days, days[i])
			ts.output = append(ts.output, out)
			ts.y = append(ts.y, (v-mean)/std)
			ts.origin = math.Min(ts.origin, days[i])
		}
	}
	for i := range ts.days {
		ts.days[i] -= ts.origin
	}
	return ts, norms
}

func validateSeries(series []Series, master int, opt *Options) error {
	if len(series) == 0 {
		return ErrTooFewVariables
	}
	if master < 0 || master >= len(series) {
		return fmt.Errorf("master %d for %d series, %w", master, len(series), ErrInvalidMaster)
	}
	for i, s := range series {
		if len(s.Days) != len(s.Values) {
			return fmt.Errorf("series %d has %d days and %d values, %w", i, len(s.Days), len(s.Values), ErrLenMismatch)
		}
	}
	if opt.Model != nil && opt.Model.NumOutputs() != len(series) {
		return fmt.Errorf("model has %d outputs for %d series, %w", opt.Model.NumOutputs(), len(series), ErrOutputMismatch)
	}
	return nil
}

// Fuse jointly reconstructs every series at outputDays. The master series only gates the fit: when it
// has no valid observation nothing is optimized and the result is empty. Numerical failures do not
// return an error, they clear Result.OK instead.
func Fuse(series []Series, master int, outputDays []float64, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if err := validateSeries(series, master, opt); err != nil {
		return nil, err
	}

	ts, norms := newTrainingSet(series)
	if norms[master].count == 0 {
		return nanResult(len(series), len(outputDays)), nil
	}
	return fuse(ts, norms, outputDays, opt), nil
}

func fuse(ts *trainingSet, norms []normalization, outputDays []float64, opt *Options) (res *Result) {
	numSeries := len(norms)
	defer func() {
		if r := recover(); r != nil {
			res = nanResult(numSeries, len(outputDays))
		}
	}()

	repeats := opt.Repeats
	if opt.Model != nil {
		// a fixed model predicts the same values on every repeat
		repeats = 1
	}

	rng := rand.New(rand.NewPCG(opt.Seed, pcgStream))
	res = &Result{
		Mean: make([][]float64, numSeries),
		Std:  make([][]float64, numSeries),
		OK:   true,
	}
	for out := range norms {
		res.Mean[out] = make([]float64, len(outputDays))
		res.Std[out] = make([]float64, len(outputDays))
	}

	for r := 0; r < repeats; r++ {
		model := opt.Model
		if model == nil {
			var err error
			model, err = fit(ts, rng, opt.MaxIterations)
			if err != nil {
				return nanResult(numSeries, len(outputDays))
			}
		}
		g, err := newGP(model, ts)
		if err != nil {
			return nanResult(numSeries, len(outputDays))
		}
		if opt.Model == nil {
			model.LogLikelihood = -g.negLogLikelihood()
		}
		res.Model = model

		for out, norm := range norms {
			mean, variance, err := g.predict(outputDays, out)
			if err != nil {
				return nanResult(numSeries, len(outputDays))
			}
			for s := range outputDays {
				res.Mean[out][s] += (mean[s]*norm.std + norm.mean) / float64(repeats)
				res.Std[out][s] += math.Sqrt(variance[s]) * norm.std / float64(repeats)
			}
		}
	}

	// series without observations have nothing to un-normalize against
	for out, norm := range norms {
		if norm.count == 0 {
			floats.AddConst(math.NaN(), res.Std[out])
		}
	}
	return res
}
