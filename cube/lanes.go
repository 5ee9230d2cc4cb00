package cube

import (
	"errors"
	"iter"
	"slices"
)

var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Lanes addresses every one dimensional slice of a cube along one axis. Lane k enumerates the
// combinations of the remaining dimensions in row major order.
type Lanes struct {
	cube    *Cube
	axis    int
	strides []int
	others  []int
	count   int
}

// Lanes returns the lane view of the cube along dim.
func (c *Cube) Lanes(dim string) (*Lanes, error) {
	axis, err := c.Axis(dim)
	if err != nil {
		return nil, err
	}
	l := &Lanes{
		cube:    c,
		axis:    axis,
		strides: c.strides(),
		count:   1,
	}
	for i, size := range c.Shape {
		if i == axis {
			continue
		}
		l.others = append(l.others, i)
		l.count *= size
	}
	return l, nil
}

// Count returns the number of lanes.
func (l *Lanes) Count() int {
	return l.count
}

// Len returns the length of each lane.
func (l *Lanes) Len() int {
	return l.cube.Shape[l.axis]
}

// Index returns the multi index of lane k with the lane axis set to -1.
func (l *Lanes) Index(k int) []int {
	idx := make([]int, len(l.cube.Shape))
	idx[l.axis] = -1
	for p := len(l.others) - 1; p >= 0; p-- {
		ax := l.others[p]
		idx[ax] = k % l.cube.Shape[ax]
		k /= l.cube.Shape[ax]
	}
	return idx
}

func (l *Lanes) base(k int) int {
	var off int
	for p := len(l.others) - 1; p >= 0; p-- {
		ax := l.others[p]
		off += (k % l.cube.Shape[ax]) * l.strides[ax]
		k /= l.cube.Shape[ax]
	}
	return off
}

// Read copies lane k into dst which must have Len values.
func (l *Lanes) Read(k int, dst []float64) {
	off := l.base(k)
	step := l.strides[l.axis]
	for i := range dst {
		dst[i] = l.cube.Data[off+i*step]
	}
}

// Write stores src into lane k.
func (l *Lanes) Write(k int, src []float64) {
	off := l.base(k)
	step := l.strides[l.axis]
	for i, val := range src {
		l.cube.Data[off+i*step] = val
	}
}

// Chunk is an owned block of consecutive lanes [Start, End).
type Chunk struct {
	Start  int
	End    int
	Slices [][]float64
}

// Chunks yields owned copies of consecutive lanes in blocks of size.
func (l *Lanes) Chunks(size int) iter.Seq[*Chunk] {
	return func(yield func(*Chunk) bool) {
		if size <= 0 {
			size = l.count
		}
		for start := 0; start < l.count; start += size {
			end := min(start+size, l.count)
			ch := &Chunk{
				Start:  start,
				End:    end,
				Slices: make([][]float64, end-start),
			}
			for k := start; k < end; k++ {
				ch.Slices[k-start] = make([]float64, l.Len())
				l.Read(k, ch.Slices[k-start])
			}
			if !yield(ch) {
				return
			}
		}
	}
}

// WriteBack stores a processed chunk by its lane range.
func (l *Lanes) WriteBack(ch *Chunk) {
	for k := ch.Start; k < ch.End; k++ {
		l.Write(k, ch.Slices[k-ch.Start])
	}
}

// Blocks addresses two dimensional (band, time) blocks of a cube for every combination of the
// remaining dimensions.
type Blocks struct {
	cube    *Cube
	rowAxis int
	colAxis int
	inner   *Lanes
}

// Blocks returns the block view with rows along rowDim and columns along colDim.
func (c *Cube) Blocks(rowDim, colDim string) (*Blocks, error) {
	rowAxis, err := c.Axis(rowDim)
	if err != nil {
		return nil, err
	}
	colAxis, err := c.Axis(colDim)
	if err != nil {
		return nil, err
	}
	if rowAxis == colAxis {
		return nil, ErrDuplicateDim
	}

	// lanes along the column axis where the row axis is excluded from the combinations
	lanes, err := c.Lanes(colDim)
	if err != nil {
		return nil, err
	}
	others := slices.DeleteFunc(append([]int{}, lanes.others...), func(ax int) bool { return ax == rowAxis })
	lanes.others = others
	lanes.count = 1
	for _, ax := range others {
		lanes.count *= c.Shape[ax]
	}
	return &Blocks{cube: c, rowAxis: rowAxis, colAxis: colAxis, inner: lanes}, nil
}

// Count returns the number of blocks.
func (b *Blocks) Count() int {
	return b.inner.count
}

// Dims returns the number of rows and columns of each block.
func (b *Blocks) Dims() (int, int) {
	return b.cube.Shape[b.rowAxis], b.cube.Shape[b.colAxis]
}

// Index returns the multi index of block k with the row and column axes set to -1.
func (b *Blocks) Index(k int) []int {
	idx := b.inner.Index(k)
	idx[b.rowAxis] = -1
	return idx
}

// Read returns an owned copy of block k.
func (b *Blocks) Read(k int) [][]float64 {
	rows, cols := b.Dims()
	off := b.inner.base(k)
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[r][j] = b.cube.Data[off+r*b.inner.strides[b.rowAxis]+j*b.inner.strides[b.colAxis]]
		}
	}
	return out
}

// Write stores block k.
func (b *Blocks) Write(k int, block [][]float64) {
	off := b.inner.base(k)
	for r, row := range block {
		for j, val := range row {
			b.cube.Data[off+r*b.inner.strides[b.rowAxis]+j*b.inner.strides[b.colAxis]] = val
		}
	}
}
