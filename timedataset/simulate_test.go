package timedataset

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRegularT(t *testing.T) {
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

	numPnts := 7
	res := GenerateRegularT(start, numPnts, 5)
	assert.Len(t, res, numPnts)

	assert.Equal(t, start, res[0])
	assert.Equal(t, time.Date(2016, 1, 31, 0, 0, 0, 0, time.UTC), res[numPnts-1])
}

func TestSeries(t *testing.T) {
	numPnts := 7
	s := Series(GenerateConstY(numPnts, 1))

	res := s.Add(GenerateConstY(numPnts, 2))
	require.Equal(t, Series([]float64{3, 3, 3, 3, 3, 3, 3}), res)

	s.AddAt([]int{1, 4, 4}, []float64{1, 2, 2})
	assert.Equal(t, Series([]float64{3, 4, 3, 3, 5, 3, 3}), s)

	s.MaskNaN(func(i int) bool { return i%2 == 0 })
	for i, val := range s {
		assert.Equal(t, i%2 == 0, math.IsNaN(val), "index %d", i)
	}
}

func TestGenerateHarmonicY(t *testing.T) {
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := GenerateRegularT(start, 365, 5)

	y := GenerateConstY(len(tSeries), 5000).
		Add(GenerateTrendY(tSeries, 5)).
		Add(GenerateHarmonicY(tSeries, 600, 200, 1))

	assert.InDelta(t, 5600.0, y[0], 1e-9)

	days := 5.0 * 100
	rad := 2 * math.Pi * days / DaysPerYear
	assert.InDelta(t, 5000+5*days+600*math.Cos(rad)+200*math.Sin(rad), y[100], 1e-9)
}

func TestGenerateNoise(t *testing.T) {
	n1 := GenerateNoise(100, 0.2, rand.New(rand.NewPCG(42, 0)))
	n2 := GenerateNoise(100, 0.2, rand.New(rand.NewPCG(42, 0)))
	assert.Equal(t, n1, n2)
	for _, val := range n1 {
		assert.GreaterOrEqual(t, val, 0.0)
		assert.Less(t, val, 0.2)
	}
}

func TestGenerateChange(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := GenerateRegularT(start, 5, 1)

	res := GenerateChange(tSeries, tSeries[2], 1.0, 0.5)
	assert.Equal(t, Series([]float64{0, 0, 1, 1.5, 2}), res)
}
