package cube

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAlong(t *testing.T) {
	testData := map[string]struct {
		opt *ApplyOptions
	}{
		"default":  {nil},
		"parallel": {&ApplyOptions{Parallelism: 4, ChunkSize: 3}},
		"one":      {&ApplyOptions{Parallelism: 2, ChunkSize: 1}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			c := testCube(t, 3, 4, 5)
			out, err := ApplyAlong(c, "t", TimeCoord(testDates(2)), func(idx int, in, out []float64) error {
				// sum and max along time
				out[0] = in[0] + in[1] + in[2]
				out[1] = math.Max(in[0], math.Max(in[1], in[2]))
				return nil
			}, td.opt)
			require.Nil(t, err)

			assert.Equal(t, []string{"t", "y", "x"}, out.Dims)
			assert.Equal(t, []int{2, 4, 5}, out.Shape)
			assert.Equal(t, testDates(2), out.Coords["t"].Times)
			for j := 0; j < 4; j++ {
				for k := 0; k < 5; k++ {
					base := float64(10*j + k)
					assert.Equal(t, 3*base+300, out.At(0, j, k))
					assert.Equal(t, base+200, out.At(1, j, k))
				}
			}
		})
	}
}

func TestApplyAlongError(t *testing.T) {
	errKernel := errors.New("kernel failed")
	c := testCube(t, 3, 2, 2)

	_, err := ApplyAlong(c, "t", c.Coords["t"], func(idx int, in, out []float64) error {
		if idx == 2 {
			return errKernel
		}
		copy(out, in)
		return nil
	}, &ApplyOptions{Parallelism: 2, ChunkSize: 1})
	assert.ErrorIs(t, err, errKernel)
	assert.Contains(t, err.Error(), "slice 2")

	_, err = ApplyAlong(c, "z", c.Coords["t"], nil, nil)
	assert.ErrorIs(t, err, ErrDimNotFound)
}

func TestApplyAlongMulti(t *testing.T) {
	coords := map[string]Coord{
		"bands": LabelCoord("a", "b"),
		"t":     TimeCoord(testDates(3)),
		"x":     RangeCoord(2),
	}
	c, err := New("", []string{"bands", "t", "x"}, coords, []float64{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	})
	require.Nil(t, err)

	out, err := ApplyAlongMulti(c, "bands", "t", LabelCoord("sum"), TimeCoord(testDates(1)), func(idx int, in, out [][]float64) error {
		for _, row := range in {
			for _, val := range row {
				out[0][0] += val
			}
		}
		return nil
	}, &ApplyOptions{Parallelism: 2, ChunkSize: 1})
	require.Nil(t, err)
	assert.Equal(t, []int{1, 1, 2}, out.Shape)
	assert.Equal(t, []string{"sum"}, out.Coords["bands"].Labels)

	// out is NaN filled so the sum starts at NaN
	assert.True(t, math.IsNaN(out.At(0, 0, 0)))

	out, err = ApplyAlongMulti(c, "bands", "t", LabelCoord("sum"), TimeCoord(testDates(1)), func(idx int, in, out [][]float64) error {
		var sum float64
		for _, row := range in {
			for _, val := range row {
				sum += val
			}
		}
		out[0][0] = sum
		return nil
	}, nil)
	require.Nil(t, err)
	assert.Equal(t, 1.0+3+5+7+9+11, out.At(0, 0, 0))
	assert.Equal(t, 2.0+4+6+8+10+12, out.At(0, 0, 1))
}

func TestApplyOptionsValidate(t *testing.T) {
	opt := (&ApplyOptions{}).Validate()
	assert.Equal(t, NewDefaultApplyOptions(), opt)

	opt = (*ApplyOptions)(nil).Validate()
	assert.Equal(t, NewDefaultApplyOptions(), opt)
}
