// Package cube implements a small labeled N-dimensional array, the dataset of named cubes that share
// dimensions, and the dispatcher that applies one dimensional kernels along an axis.
package cube

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrShapeMismatch    = errors.New("data length does not match cube shape")
	ErrDimNotFound      = errors.New("dimension not found")
	ErrDuplicateDim     = errors.New("duplicate dimension")
	ErrCoordMismatch    = errors.New("coordinate length does not match dimension size")
	ErrMissingCoord     = errors.New("dimension has no coordinate")
	ErrVariableNotFound = errors.New("variable not found")
	ErrDuplicateVar     = errors.New("duplicate variable")
	ErrDatasetMismatch  = errors.New("variables do not share dimensions")
	ErrEmptyDataset     = errors.New("dataset has no variables")
)

// Cube is a labeled row major N-dimensional array of float64 where NaN marks missing values.
type Cube struct {
	Name   string
	Dims   []string
	Shape  []int
	Coords map[string]Coord
	Data   []float64
}

// New creates a cube whose shape follows the coordinate lengths of dims. A nil data slice allocates
// a cube filled with NaN.
func New(name string, dims []string, coords map[string]Coord, data []float64) (*Cube, error) {
	shape := make([]int, len(dims))
	for i, dim := range dims {
		coord, exists := coords[dim]
		if !exists {
			return nil, fmt.Errorf("%q, %w", dim, ErrMissingCoord)
		}
		shape[i] = coord.Len()
	}

	c := &Cube{
		Name:   name,
		Dims:   append([]string{}, dims...),
		Shape:  shape,
		Coords: coords,
		Data:   data,
	}
	if c.Data == nil {
		c.Data = nanSlice(c.Size())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that dimensions are unique, coordinates match the shape and the data fills it.
func (c *Cube) Validate() error {
	if len(c.Dims) != len(c.Shape) {
		return fmt.Errorf("%d dims and %d shape entries, %w", len(c.Dims), len(c.Shape), ErrShapeMismatch)
	}
	for i, dim := range c.Dims {
		if slices.Index(c.Dims, dim) != i {
			return fmt.Errorf("%q, %w", dim, ErrDuplicateDim)
		}
		coord, exists := c.Coords[dim]
		if !exists {
			return fmt.Errorf("%q, %w", dim, ErrMissingCoord)
		}
		if coord.Len() != c.Shape[i] {
			return fmt.Errorf("%q has %d labels for size %d, %w", dim, coord.Len(), c.Shape[i], ErrCoordMismatch)
		}
	}
	if len(c.Data) != c.Size() {
		return fmt.Errorf("got %d values for shape %v, %w", len(c.Data), c.Shape, ErrShapeMismatch)
	}
	return nil
}

// Size returns the total number of cells.
func (c *Cube) Size() int {
	size := 1
	for _, s := range c.Shape {
		size *= s
	}
	return size
}

// Axis returns the position of a dimension.
func (c *Cube) Axis(dim string) (int, error) {
	idx := slices.Index(c.Dims, dim)
	if idx < 0 {
		return -1, fmt.Errorf("%q not in %v, %w", dim, c.Dims, ErrDimNotFound)
	}
	return idx, nil
}

func (c *Cube) strides() []int {
	strides := make([]int, len(c.Shape))
	stride := 1
	for i := len(c.Shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= c.Shape[i]
	}
	return strides
}

func (c *Cube) offset(idx []int) int {
	strides := c.strides()
	var off int
	for i, pos := range idx {
		off += pos * strides[i]
	}
	return off
}

// At returns the value at the multi index.
func (c *Cube) At(idx ...int) float64 {
	return c.Data[c.offset(idx)]
}

// Set stores a value at the multi index.
func (c *Cube) Set(val float64, idx ...int) {
	c.Data[c.offset(idx)] = val
}

// Copy returns a deep copy of the cube.
func (c *Cube) Copy() *Cube {
	coords := make(map[string]Coord, len(c.Coords))
	for dim, coord := range c.Coords {
		coords[dim] = coord.copy()
	}
	return &Cube{
		Name:   c.Name,
		Dims:   append([]string{}, c.Dims...),
		Shape:  append([]int{}, c.Shape...),
		Coords: coords,
		Data:   append([]float64{}, c.Data...),
	}
}

// WithCoord returns an empty NaN filled cube with the coordinate of dim replaced. Dimension order and
// the remaining coordinates are preserved.
func (c *Cube) WithCoord(dim string, coord Coord) (*Cube, error) {
	if _, err := c.Axis(dim); err != nil {
		return nil, err
	}
	coords := make(map[string]Coord, len(c.Coords))
	for d, crd := range c.Coords {
		coords[d] = crd
	}
	coords[dim] = coord
	return New(c.Name, c.Dims, coords, nil)
}

// RenameDim returns a cube sharing the data of c with dimension from renamed to to.
func (c *Cube) RenameDim(from, to string) (*Cube, error) {
	axis, err := c.Axis(from)
	if err != nil {
		return nil, err
	}
	if from == to {
		return c, nil
	}
	if slices.Contains(c.Dims, to) {
		return nil, fmt.Errorf("%q, %w", to, ErrDuplicateDim)
	}
	dims := append([]string{}, c.Dims...)
	dims[axis] = to
	coords := make(map[string]Coord, len(c.Coords))
	for d, crd := range c.Coords {
		if d == from {
			d = to
		}
		coords[d] = crd
	}
	return &Cube{
		Name:   c.Name,
		Dims:   dims,
		Shape:  append([]int{}, c.Shape...),
		Coords: coords,
		Data:   c.Data,
	}, nil
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
