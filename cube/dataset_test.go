package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset(t *testing.T) {
	a := testCube(t, 3, 2, 2)
	b := testCube(t, 3, 2, 2)
	b.Name = "vv"

	ds, err := NewDataset(a, b)
	require.Nil(t, err)
	assert.Equal(t, []string{"ndvi", "vv"}, ds.Names())
	assert.Equal(t, 2, ds.Len())

	_, err = ds.Var("missing")
	assert.ErrorIs(t, err, ErrVariableNotFound)

	err = ds.Add(a)
	assert.ErrorIs(t, err, ErrDuplicateVar)

	other := testCube(t, 4, 2, 2)
	other.Name = "other"
	err = ds.Add(other)
	assert.ErrorIs(t, err, ErrDatasetMismatch)

	dim, err := ds.TimeDimension("")
	require.Nil(t, err)
	assert.Equal(t, "t", dim)

	_, err = (&Dataset{}).Template()
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestToArrayRoundTrip(t *testing.T) {
	a := testCube(t, 3, 2, 2)
	b := testCube(t, 3, 2, 2)
	b.Name = "vv"
	for i := range b.Data {
		b.Data[i] = -b.Data[i]
	}
	ds, err := NewDataset(a, b)
	require.Nil(t, err)

	arr, err := ds.ToArray("bands")
	require.Nil(t, err)
	assert.Equal(t, []string{"bands", "t", "y", "x"}, arr.Dims)
	assert.Equal(t, []int{2, 3, 2, 2}, arr.Shape)
	assert.Equal(t, -211.0, arr.At(1, 2, 1, 1))

	sub, err := ds.ToArray("bands", "vv")
	require.Nil(t, err)
	assert.Equal(t, []string{"vv"}, sub.Coords["bands"].Labels)

	_, err = ds.ToArray("t")
	assert.ErrorIs(t, err, ErrDuplicateDim)

	back, err := DatasetFromArray(arr, "bands")
	require.Nil(t, err)
	assert.Equal(t, []string{"ndvi", "vv"}, back.Names())
	vv, err := back.Var("vv")
	require.Nil(t, err)
	assert.Equal(t, b.Data, vv.Data)
	assert.Equal(t, []string{"t", "y", "x"}, vv.Dims)
}

func TestDatasetFromArrayTrailingBand(t *testing.T) {
	coords := map[string]Coord{
		"t":     TimeCoord(testDates(2)),
		"bands": LabelCoord("a", "b", "c"),
	}
	c, err := New("", []string{"t", "bands"}, coords, []float64{1, 2, 3, 4, 5, 6})
	require.Nil(t, err)

	ds, err := DatasetFromArray(c, "bands")
	require.Nil(t, err)
	b, err := ds.Var("b")
	require.Nil(t, err)
	assert.Equal(t, []float64{2, 5}, b.Data)

	_, err = DatasetFromArray(c, "t")
	assert.ErrorIs(t, err, ErrMissingCoord)
}
