package fusets

import (
	"github.com/Open-EO/FuseTS/udf"
)

// Options configures how the transformers run their process
type Options struct {
	// Parallelism bounds the number of slices processed concurrently
	Parallelism int

	// Strict fails on slices without enough observations instead of leaving them NaN
	Strict bool

	// Backend runs the process. Nil runs it in the calling process.
	Backend udf.Backend
}

// NewDefaultOptions runs sequentially in the calling process
func NewDefaultOptions() *Options {
	return &Options{Parallelism: 1}
}

func (o *Options) settings() udf.Settings {
	return udf.Settings{Parallelism: o.Parallelism, Strict: o.Strict}
}

func (o *Options) backend() udf.Backend {
	if o.Backend != nil {
		return o.Backend
	}
	return udf.NewLocalBackend(o.settings())
}
