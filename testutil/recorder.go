package testutil

import (
	"slices"
	"sync"

	"github.com/itohio/rewire"
)

// Recorder subscribes to a Source and keeps everything it emits.
type Recorder[T any] struct {
	mu    sync.Mutex
	data  []T
	errs  []error
	ends  int
	endC  chan struct{}
	dataC chan T

	Unsubscribe func()
}

// Record subscribes a new Recorder to src. Every data chunk is also sent to C()
// if there is room; the channel holds up to size chunks.
func Record[T any](src rewire.Source[T], size int) *Recorder[T] {
	r := &Recorder[T]{
		endC:  make(chan struct{}),
		dataC: make(chan T, size),
	}
	r.Unsubscribe = src.Subscribe(rewire.Handlers[T]{
		Data:  r.onData,
		End:   r.onEnd,
		Error: r.onError,
	})
	return r
}

func (r *Recorder[T]) onData(chunk T) {
	r.mu.Lock()
	r.data = append(r.data, chunk)
	r.mu.Unlock()
	select {
	case r.dataC <- chunk:
	default:
	}
}

func (r *Recorder[T]) onEnd() {
	r.mu.Lock()
	r.ends++
	if r.ends == 1 {
		close(r.endC)
	}
	r.mu.Unlock()
}

func (r *Recorder[T]) onError(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *Recorder[T]) Data() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.data)
}

func (r *Recorder[T]) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.errs)
}

// Ends returns how many end notifications were received.
func (r *Recorder[T]) Ends() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ends
}

func (r *Recorder[T]) EndC() <-chan struct{} { return r.endC }
func (r *Recorder[T]) C() <-chan T           { return r.dataC }
