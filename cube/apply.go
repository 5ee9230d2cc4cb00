package cube

import (
	"fmt"
	"sync"
)

const (
	DefaultParallelism = 1
	DefaultChunkSize   = 64
)

// SliceFunc processes the lane with index idx. out is pre-filled with NaN.
type SliceFunc func(idx int, in, out []float64) error

// BlockFunc processes the (band, time) block with index idx. out is pre-filled with NaN.
type BlockFunc func(idx int, in, out [][]float64) error

// ApplyOptions configures how lanes are distributed to workers
type ApplyOptions struct {
	// Parallelism is the number of chunks processed concurrently
	Parallelism int

	// ChunkSize is the number of lanes copied out per chunk
	ChunkSize int
}

// Validate fills in defaults for unset options
func (o *ApplyOptions) Validate() *ApplyOptions {
	if o == nil {
		o = NewDefaultApplyOptions()
	}
	out := *o
	if out.Parallelism <= 0 {
		out.Parallelism = DefaultParallelism
	}
	if out.ChunkSize <= 0 {
		out.ChunkSize = DefaultChunkSize
	}
	return &out
}

// NewDefaultApplyOptions returns single worker options
func NewDefaultApplyOptions() *ApplyOptions {
	return &ApplyOptions{
		Parallelism: DefaultParallelism,
		ChunkSize:   DefaultChunkSize,
	}
}

// ApplyAlong runs fn over every lane of c along dim. The result keeps the dimension order and the
// other coordinates of c while dim takes the out coordinate. Any kernel error aborts the operation
// and is wrapped with the lane index.
func ApplyAlong(c *Cube, dim string, out Coord, fn SliceFunc, opt *ApplyOptions) (*Cube, error) {
	opt = opt.Validate()

	in, err := c.Lanes(dim)
	if err != nil {
		return nil, err
	}
	res, err := c.WithCoord(dim, out)
	if err != nil {
		return nil, err
	}
	outLanes, err := res.Lanes(dim)
	if err != nil {
		return nil, err
	}

	var (
		wg  sync.WaitGroup
		fe  firstError
		sem = make(chan struct{}, opt.Parallelism)
	)
	for ch := range in.Chunks(opt.ChunkSize) {
		if fe.failed() {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(ch *Chunk) {
			defer func() {
				wg.Done()
				<-sem
			}()
			processed := &Chunk{
				Start:  ch.Start,
				End:    ch.End,
				Slices: make([][]float64, len(ch.Slices)),
			}
			for i, slice := range ch.Slices {
				k := ch.Start + i
				processed.Slices[i] = nanSlice(outLanes.Len())
				if err := fn(k, slice, processed.Slices[i]); err != nil {
					fe.set(k, fmt.Errorf("slice %d at %v, %w", k, in.Index(k), err))
					return
				}
			}
			outLanes.WriteBack(processed)
		}(ch)
	}
	wg.Wait()

	if err := fe.get(); err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyAlongMulti runs fn over every (bandDim, timeDim) block of c. The result replaces the band
// coordinate by outBands and the time coordinate by outTime.
func ApplyAlongMulti(c *Cube, bandDim, timeDim string, outBands, outTime Coord, fn BlockFunc, opt *ApplyOptions) (*Cube, error) {
	opt = opt.Validate()

	in, err := c.Blocks(bandDim, timeDim)
	if err != nil {
		return nil, err
	}
	res, err := c.WithCoord(bandDim, outBands)
	if err != nil {
		return nil, err
	}
	res, err = res.WithCoord(timeDim, outTime)
	if err != nil {
		return nil, err
	}
	outBlocks, err := res.Blocks(bandDim, timeDim)
	if err != nil {
		return nil, err
	}
	rows, cols := outBlocks.Dims()

	var (
		wg  sync.WaitGroup
		fe  firstError
		sem = make(chan struct{}, opt.Parallelism)
	)
	for start := 0; start < in.Count(); start += opt.ChunkSize {
		if fe.failed() {
			break
		}
		end := min(start+opt.ChunkSize, in.Count())
		blocks := make([][][]float64, end-start)
		for k := start; k < end; k++ {
			blocks[k-start] = in.Read(k)
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(start int, blocks [][][]float64) {
			defer func() {
				wg.Done()
				<-sem
			}()
			for i, block := range blocks {
				k := start + i
				processed := make([][]float64, rows)
				for r := range processed {
					processed[r] = nanSlice(cols)
				}
				if err := fn(k, block, processed); err != nil {
					fe.set(k, fmt.Errorf("block %d at %v, %w", k, in.Index(k), err))
					return
				}
				outBlocks.Write(k, processed)
			}
		}(start, blocks)
	}
	wg.Wait()

	if err := fe.get(); err != nil {
		return nil, err
	}
	return res, nil
}

// firstError keeps the error of the lowest failing index so results are deterministic across
// worker counts.
type firstError struct {
	mu  sync.Mutex
	idx int
	err error
}

func (f *firstError) set(idx int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil || idx < f.idx {
		f.idx = idx
		f.err = err
	}
}

func (f *firstError) failed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err != nil
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
