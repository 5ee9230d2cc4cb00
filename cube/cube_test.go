package cube

import (
	"math"
	"testing"
	"time"

	"github.com/Open-EO/FuseTS/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDates(n int) []time.Time {
	return timedataset.GenerateRegularT(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), n, 5)
}

// testCube builds a (t, y, x) cube where each value encodes its index as 100*t + 10*y + x.
func testCube(t *testing.T, nt, ny, nx int) *Cube {
	t.Helper()
	coords := map[string]Coord{
		"t": TimeCoord(testDates(nt)),
		"y": RangeCoord(ny),
		"x": RangeCoord(nx),
	}
	c, err := New("ndvi", []string{"t", "y", "x"}, coords, nil)
	require.Nil(t, err)
	for i := 0; i < nt; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nx; k++ {
				c.Set(float64(100*i+10*j+k), i, j, k)
			}
		}
	}
	return c
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		dims   []string
		coords map[string]Coord
		data   []float64
		err    error
	}{
		"valid": {
			dims:   []string{"t", "x"},
			coords: map[string]Coord{"t": TimeCoord(testDates(3)), "x": RangeCoord(2)},
			data:   []float64{1, 2, 3, 4, 5, 6},
		},
		"nil data": {
			dims:   []string{"t"},
			coords: map[string]Coord{"t": TimeCoord(testDates(3))},
		},
		"missing coord": {
			dims:   []string{"t", "x"},
			coords: map[string]Coord{"t": TimeCoord(testDates(3))},
			err:    ErrMissingCoord,
		},
		"shape mismatch": {
			dims:   []string{"t"},
			coords: map[string]Coord{"t": TimeCoord(testDates(3))},
			data:   []float64{1, 2},
			err:    ErrShapeMismatch,
		},
		"duplicate dim": {
			dims:   []string{"t", "t"},
			coords: map[string]Coord{"t": TimeCoord(testDates(2))},
			data:   []float64{1, 2, 3, 4},
			err:    ErrDuplicateDim,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			c, err := New("v", td.dims, td.coords, td.data)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, c.Size(), len(c.Data))
			if td.data == nil {
				for _, val := range c.Data {
					assert.True(t, math.IsNaN(val))
				}
			}
		})
	}
}

func TestAtSet(t *testing.T) {
	c := testCube(t, 3, 2, 4)
	assert.Equal(t, 213.0, c.At(2, 1, 3))
	assert.Equal(t, []int{3, 2, 4}, c.Shape)

	cp := c.Copy()
	cp.Set(-1, 0, 0, 0)
	assert.Equal(t, 0.0, c.At(0, 0, 0))
	assert.Equal(t, -1.0, cp.At(0, 0, 0))
}

func TestWithCoord(t *testing.T) {
	c := testCube(t, 3, 2, 4)
	out, err := c.WithCoord("t", TimeCoord(testDates(5)))
	require.Nil(t, err)
	assert.Equal(t, []string{"t", "y", "x"}, out.Dims)
	assert.Equal(t, []int{5, 2, 4}, out.Shape)
	assert.True(t, math.IsNaN(out.At(4, 1, 3)))

	_, err = c.WithCoord("z", RangeCoord(1))
	assert.ErrorIs(t, err, ErrDimNotFound)
}

func TestRenameDim(t *testing.T) {
	c := testCube(t, 3, 2, 4)

	renamed, err := c.RenameDim("t", "bands")
	require.Nil(t, err)
	assert.Equal(t, []string{"bands", "y", "x"}, renamed.Dims)
	assert.Equal(t, c.Coords["t"].Times, renamed.Coords["bands"].Times)
	_, exists := renamed.Coords["t"]
	assert.False(t, exists)
	assert.Equal(t, 213.0, renamed.At(2, 1, 3))
	require.Nil(t, renamed.Validate())

	_, err = c.RenameDim("z", "bands")
	assert.ErrorIs(t, err, ErrDimNotFound)

	_, err = c.RenameDim("t", "x")
	assert.ErrorIs(t, err, ErrDuplicateDim)
}
