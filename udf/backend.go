package udf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Open-EO/FuseTS/cube"
)

// Kind selects a backend implementation.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrNoSubmitter    = errors.New("remote backend requires a submitter")
)

// Capability describes what a backend can run.
type Capability struct {
	Kind      Kind
	Processes []string

	// InProcess is true when the dataset never leaves the calling process
	InProcess bool
}

// Backend runs packaged processes.
type Backend interface {
	Capabilities() Capability
	Run(ctx context.Context, process string, ds *cube.Dataset, params Context) (*cube.Dataset, error)
}

// Submitter hands a process invocation to a remote processing platform and waits for its result.
type Submitter interface {
	Submit(ctx context.Context, process string, ds *cube.Dataset, params Context) (*cube.Dataset, error)
}

// SubmitterFunc adapts a function to a Submitter.
type SubmitterFunc func(ctx context.Context, process string, ds *cube.Dataset, params Context) (*cube.Dataset, error)

func (f SubmitterFunc) Submit(ctx context.Context, process string, ds *cube.Dataset, params Context) (*cube.Dataset, error) {
	return f(ctx, process, ds, params)
}

// LocalBackend runs the processes in the calling process.
type LocalBackend struct {
	settings Settings
}

// NewLocalBackend creates a backend running slices with the given settings. A parallelism below one
// runs slices sequentially.
func NewLocalBackend(s Settings) *LocalBackend {
	if s.Parallelism < 1 {
		s.Parallelism = 1
	}
	return &LocalBackend{settings: s}
}

func (b *LocalBackend) Capabilities() Capability {
	return Capability{Kind: KindLocal, Processes: Processes(), InProcess: true}
}

// Run validates the parameters and runs the process. Cancellation is only observed before the
// process starts.
func (b *LocalBackend) Run(ctx context.Context, process string, ds *cube.Dataset, params Context) (*cube.Dataset, error) {
	fn, err := Lookup(process)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := fn(ds, params, b.settings)
	if err != nil {
		return nil, fmt.Errorf("process %s, %w", process, err)
	}
	return res, nil
}

// RemoteBackend forwards invocations to a Submitter after checking them locally.
type RemoteBackend struct {
	submitter Submitter
}

// NewRemoteBackend wraps a submitter.
func NewRemoteBackend(s Submitter) (*RemoteBackend, error) {
	if s == nil {
		return nil, ErrNoSubmitter
	}
	return &RemoteBackend{submitter: s}, nil
}

func (b *RemoteBackend) Capabilities() Capability {
	return Capability{Kind: KindRemote, Processes: Processes()}
}

func (b *RemoteBackend) Run(ctx context.Context, process string, ds *cube.Dataset, params Context) (*cube.Dataset, error) {
	if _, err := Lookup(process); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	res, err := b.submitter.Submit(ctx, process, ds, params)
	if err != nil {
		return nil, fmt.Errorf("remote process %s, %w", process, err)
	}
	return res, nil
}

// NewBackend creates the backend of the given kind. An empty kind selects the local backend and the
// submitter is only used by the remote backend.
func NewBackend(kind Kind, s Settings, submitter Submitter) (Backend, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case "", KindLocal:
		return NewLocalBackend(s), nil
	case KindRemote:
		rb, err := NewRemoteBackend(submitter)
		if err != nil {
			return nil, err
		}
		return rb, nil
	default:
		return nil, fmt.Errorf("%q (supported: local, remote), %w", kind, ErrUnknownBackend)
	}
}
