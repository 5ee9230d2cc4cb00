package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanes(t *testing.T) {
	c := testCube(t, 3, 2, 4)
	lanes, err := c.Lanes("t")
	require.Nil(t, err)
	assert.Equal(t, 8, lanes.Count())
	assert.Equal(t, 3, lanes.Len())

	dst := make([]float64, 3)
	lanes.Read(5, dst)
	// lane 5 is y=1, x=1
	assert.Equal(t, []float64{11, 111, 211}, dst)
	assert.Equal(t, []int{-1, 1, 1}, lanes.Index(5))

	lanes.Write(5, []float64{-1, -2, -3})
	assert.Equal(t, -3.0, c.At(2, 1, 1))

	xLanes, err := c.Lanes("x")
	require.Nil(t, err)
	dst = make([]float64, 4)
	xLanes.Read(3, dst)
	// the write above replaced (t=1, y=1, x=1)
	assert.Equal(t, []float64{110, -2, 112, 113}, dst)
}

func TestChunks(t *testing.T) {
	c := testCube(t, 2, 3, 3)
	lanes, err := c.Lanes("t")
	require.Nil(t, err)

	var starts, ends []int
	for ch := range lanes.Chunks(4) {
		starts = append(starts, ch.Start)
		ends = append(ends, ch.End)
		for i := range ch.Slices {
			ch.Slices[i][0] = -1
		}
		lanes.WriteBack(ch)
	}
	assert.Equal(t, []int{0, 4, 8}, starts)
	assert.Equal(t, []int{4, 8, 9}, ends)
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			assert.Equal(t, -1.0, c.At(0, j, k))
		}
	}
}

func TestBlocks(t *testing.T) {
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

	blocks, err := c.Blocks("bands", "t")
	require.Nil(t, err)
	assert.Equal(t, 2, blocks.Count())

	rows, cols := blocks.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	assert.Equal(t, [][]float64{{2, 4, 6}, {8, 10, 12}}, blocks.Read(1))
	assert.Equal(t, []int{-1, -1, 1}, blocks.Index(1))

	blocks.Write(0, [][]float64{{0, 0, 0}, {0, 0, 0}})
	assert.Equal(t, 0.0, c.At(1, 2, 0))
	assert.Equal(t, 12.0, c.At(1, 2, 1))

	_, err = c.Blocks("t", "t")
	assert.ErrorIs(t, err, ErrDuplicateDim)
}
