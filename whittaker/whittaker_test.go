package whittaker

import (
	"math"
	"testing"
	"time"

	"github.com/Open-EO/FuseTS/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var startDate = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

// cosineFixture samples cos(0.35x) at x = i + i/3 for 32 points, unevenly spaced over 42 days.
func cosineFixture(withNaN bool) ([]time.Time, []float64) {
	n := 32
	offsets := make([]int, n)
	for i := range offsets {
		offsets[i] = i + i/3
	}
	t := timedataset.GenerateDailyT(startDate, offsets)
	y := timedataset.GenerateCosY(t, 1.0, 0.35)
	if withNaN {
		y.MaskNaN(func(i int) bool { return offsets[i]%5 >= 2 })
	}
	return t, y
}

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"nil":            {nil, nil},
		"fixed":          {&Options{Lambda: 1, Step: 1}, nil},
		"auto":           {&Options{LogLambdaBounds: []float64{-1, 3}, Step: 2}, nil},
		"zero lambda":    {&Options{Lambda: 0, Step: 1}, ErrInvalidLambda},
		"nan lambda":     {&Options{Lambda: math.NaN(), Step: 1}, ErrInvalidLambda},
		"one bound":      {&Options{LogLambdaBounds: []float64{1}, Step: 1}, ErrInvalidLambda},
		"reverse bounds": {&Options{LogLambdaBounds: []float64{3, 1}, Step: 1}, ErrInvalidLambda},
		"zero step":      {&Options{Lambda: 1, Step: 0}, ErrInvalidStep},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestSmoothGapFilling(t *testing.T) {
	tSeries, y := cosineFixture(true)

	var nanCnt int
	for _, val := range y {
		if math.IsNaN(val) {
			nanCnt++
		}
	}
	frac := float64(nanCnt) / float64(len(y))
	require.Greater(t, frac, 0.25)
	require.Less(t, frac, 0.75)

	res, err := Smooth(tSeries, y, &Options{Lambda: 1, Step: 4})
	require.Nil(t, err)

	require.Len(t, res.Dates, 42)
	require.Len(t, res.Values, 42)
	for i, val := range res.Values {
		assert.False(t, math.IsNaN(val), "index %d", i)
		assert.InDelta(t, math.Cos(0.35*float64(i)), val, 0.15, "index %d", i)
		assert.Equal(t, startDate.AddDate(0, 0, i), res.Dates[i])
	}

	require.Len(t, res.SampledValues, 11)
	for i, val := range res.SampledValues {
		assert.Equal(t, res.Values[4*i], val)
		assert.Equal(t, startDate.AddDate(0, 0, 4*i), res.SampledDates[i])
	}
	assert.Equal(t, 1.0, res.Lambda)
}

func TestSmoothReproducesObservations(t *testing.T) {
	tSeries, y := cosineFixture(false)

	res, err := Smooth(tSeries, y, &Options{Lambda: 1, Step: 1})
	require.Nil(t, err)

	atObs := res.ValuesAt(tSeries)
	assert.InDeltaSlice(t, []float64(y), atObs, 0.15)
}

func TestSmoothDeterministic(t *testing.T) {
	offsets := make([]int, 42)
	for i := range offsets {
		offsets[i] = i
	}
	tSeries := timedataset.GenerateDailyT(startDate, offsets)
	y := timedataset.GenerateCosY(tSeries, 1.0, 0.2).
		Add(timedataset.GenerateTrendY(tSeries, 0.01)).
		MaskNaN(func(i int) bool { return i%3 == 1 })

	first, err := Smooth(tSeries, y, &Options{Lambda: 10, Step: 4})
	require.Nil(t, err)
	for i := 0; i < 5; i++ {
		next, err := Smooth(tSeries, y, &Options{Lambda: 10, Step: 4})
		require.Nil(t, err)
		assert.Equal(t, first.Values, next.Values)
		assert.Equal(t, first.SampledValues, next.SampledValues)
	}
	for i, val := range first.SampledValues {
		assert.Equal(t, first.Values[4*i], val)
	}
}

func TestSmoothErrors(t *testing.T) {
	tSeries := timedataset.GenerateRegularT(startDate, 4, 1)
	nan := math.NaN()

	testData := map[string]struct {
		t   []time.Time
		y   []float64
		opt *Options
		err error
	}{
		"empty":        {nil, nil, nil, ErrInsufficientData},
		"all nan":      {tSeries, []float64{nan, nan, nan, nan}, nil, ErrInsufficientData},
		"one valid":    {tSeries, []float64{nan, 1, nan, nan}, nil, ErrInsufficientData},
		"bad lambda":   {tSeries, []float64{1, 2, 3, 4}, &Options{Lambda: -1, Step: 1}, ErrInvalidLambda},
		"bad step":     {tSeries, []float64{1, 2, 3, 4}, &Options{Lambda: 1, Step: 0}, ErrInvalidStep},
		"len mismatch": {tSeries, []float64{1, 2}, nil, timedataset.ErrDatasetLenMismatch},
		"not sorted":   {[]time.Time{tSeries[1], tSeries[0]}, []float64{1, 2}, nil, timedataset.ErrNonMontonic},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Smooth(td.t, td.y, td.opt)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestSmoothShortSeries(t *testing.T) {
	tSeries := timedataset.GenerateRegularT(startDate, 2, 1)
	res, err := Smooth(tSeries, []float64{1, 3}, &Options{Lambda: 100, Step: 5})
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{1, 3}, res.Values, 1e-12)

	// a step beyond the series length keeps the first day only
	assert.Equal(t, []float64{res.Values[0]}, res.SampledValues)
}

func TestSmoothLinearIsUnpenalized(t *testing.T) {
	tSeries := timedataset.GenerateRegularT(startDate, 10, 3)
	y := timedataset.GenerateTrendY(tSeries, 0.5).Add(timedataset.GenerateConstY(10, 2))

	res, err := Smooth(tSeries, y, &Options{Lambda: 100, Step: 1})
	require.Nil(t, err)
	for i, val := range res.Values {
		assert.InDelta(t, 2+0.5*float64(i), val, 1e-6)
	}
}

func TestSmoothAutoLambda(t *testing.T) {
	tSeries, y := cosineFixture(false)

	res, err := Smooth(tSeries, y, &Options{LogLambdaBounds: []float64{-2, 4}, Step: 1})
	require.Nil(t, err)
	assert.GreaterOrEqual(t, res.Lambda, 1e-2*(1-1e-9))
	assert.LessOrEqual(t, res.Lambda, 1e4*(1+1e-9))
	for _, val := range res.Values {
		assert.False(t, math.IsNaN(val))
	}

	// a fixed bound degenerates to that lambda
	res, err = Smooth(tSeries, y, &Options{LogLambdaBounds: []float64{1, 1}, Step: 1})
	require.Nil(t, err)
	assert.InDelta(t, 10.0, res.Lambda, 1e-9)
}

func TestGCVPrefersSmoothingNoise(t *testing.T) {
	offsets := make([]int, 120)
	for i := range offsets {
		offsets[i] = i
	}
	tSeries := timedataset.GenerateDailyT(startDate, offsets)

	// deterministic zig-zag noise on top of a slow wave
	y := timedataset.GenerateCosY(tSeries, 1.0, 0.05)
	for i := range y {
		if i%2 == 0 {
			y[i] += 0.2
		} else {
			y[i] -= 0.2
		}
	}

	g, err := newGrid(tSeries, y)
	require.Nil(t, err)
	assert.Less(t, g.gcv(100), g.gcv(1e-2))
}

func TestGoldenSection(t *testing.T) {
	x, fx := goldenSection(func(x float64) float64 { return (x - 1.3) * (x - 1.3) }, 0, 3, 1e-6)
	assert.InDelta(t, 1.3, x, 1e-5)
	assert.InDelta(t, 0.0, fx, 1e-9)
}

func TestGCVMultiYearGrid(t *testing.T) {
	// four years of five day revisits on a daily grid
	tSeries := timedataset.GenerateRegularT(startDate, 293, 5)
	y := timedataset.GenerateCosY(tSeries, 0.3, 2*math.Pi/365.25)

	g, err := newGrid(tSeries, y)
	require.Nil(t, err)
	require.Len(t, g.w, 1461)

	score := g.gcv(1e3)
	assert.False(t, math.IsInf(score, 0) || math.IsNaN(score))
	assert.GreaterOrEqual(t, score, 0.0)
}
