package rewire

import (
	"context"

	"github.com/itohio/rewire/errors"
)

// Handlers is a set of callbacks bound to a Source. Any of them may be nil.
type Handlers[T any] struct {
	Data  func(chunk T)
	End   func()
	Error func(err error)
}

// Sink accepts chunks.
type Sink[T any] interface {
	Write(chunk T) error
}

// Source emits data, end and error notifications to its subscribers.
type Source[T any] interface {
	// Subscribe binds a handler set and returns a function that unbinds it.
	// The returned function is safe to call more than once.
	Subscribe(h Handlers[T]) (unsubscribe func())
	Pause()
	Resume()
	IsPaused() bool
}

// Duplex is both a Sink and a Source. Writes and emitted data are independent:
// what is written to a Duplex need not come back out of it.
type Duplex[T any] interface {
	Sink[T]
	Source[T]
}

// CloseNotifier is implemented by endpoints that can report their own closure.
type CloseNotifier interface {
	OnClose(func())
}

type Base struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewBaseWithCtx creates Base. This must be used only once when initializing
// the embedded Base struct.
func NewBaseWithCtx(ctx context.Context) Base {
	ret := Base{}
	ret.Init(ctx)
	return ret
}

func (t *Base) Init(ctx context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	t.ctx = ctx
	t.cancel = cancel
}

func (t *Base) Close() error {
	return t.CloseCause(nil)
}

// CloseCause closes with err as the reason. Endpoints report a non-nil err as
// an error notification when they stop.
func (t *Base) CloseCause(err error) error {
	t.cancel(err)
	return nil
}

func (t *Base) Ctx() context.Context {
	return t.ctx
}

// Cause returns the reason the Base was closed. A plain Close, cancellation
// or deadline of the parent context is not an error and yields nil.
func (t *Base) Cause() error {
	err := context.Cause(t.ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// OnClose calls f once the Base context is done.
func (t *Base) OnClose(f func()) {
	if f == nil {
		return
	}
	go func() {
		<-t.ctx.Done()
		f()
	}()
}
