package peakvalley

import (
	"math"
	"testing"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCube(t *testing.T, name string) *cube.Cube {
	t.Helper()
	tSeries := timedataset.GenerateRegularT(startDate, 16, 1)
	y := []float64{0.5, 0.7, 0.8, 0.8, 0.78, 0.6, 0.4, 0.2, 0.25, 0.5, 0.7, 0.75, 0.72, 0.74, 0.73, 0.7}
	coords := map[string]cube.Coord{
		"x": cube.RangeCoord(2),
		"t": cube.TimeCoord(tSeries),
	}
	c, err := cube.New(name, []string{"x", "t"}, coords, nil)
	require.Nil(t, err)
	for j, val := range y {
		c.Set(val, 0, j)
		c.Set(0.5, 1, j)
	}
	return c
}

func TestApply(t *testing.T) {
	out, err := Apply(testCube(t, "ndvi"), nil)
	require.Nil(t, err)
	assert.Equal(t, MaskName, out.Name)
	assert.Equal(t, []int{2, 16}, out.Shape)
	assert.Equal(t, MarkStart, out.At(0, 3))
	assert.Equal(t, MarkEnd, out.At(0, 7))
	for j := 0; j < 16; j++ {
		assert.True(t, math.IsNaN(out.At(1, j)))
	}

	_, err = Apply(testCube(t, "ndvi"), &CubeOptions{Options: Options{DropThreshold: math.NaN()}})
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestApplyDataset(t *testing.T) {
	single, err := cube.NewDataset(testCube(t, "ndvi"))
	require.Nil(t, err)
	out, err := ApplyDataset(single, nil)
	require.Nil(t, err)
	assert.Equal(t, []string{MaskName}, out.Names())

	double, err := cube.NewDataset(testCube(t, "ndvi"), testCube(t, "evi"))
	require.Nil(t, err)
	out, err = ApplyDataset(double, nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"ndvi_peak_valley_mask", "evi_peak_valley_mask"}, out.Names())
}
