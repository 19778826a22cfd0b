package rewire

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/itohio/rewire/errors"
)

var _ Duplex[[]byte] = (*Switcher[[]byte])(nil)

// Switcher is a duplex whose backing stream can be replaced at runtime.
//
// Chunks written to the Switcher are forwarded to the active stream. Data, end
// and errors emitted by the active stream come out of the Switcher. With no
// active stream the Switcher is paused and writes are either dropped or, if
// configured, queued up to a limit and flushed into the next attached stream.
//
// No lock is held while a backing stream's Write runs, so handlers may call
// Write and Switch, and a stream stuck in Write can be switched away from.
// Chunks accepted while a stream was active are written to that stream in
// order, even if the Switcher moves on before they are out.
//
// The Switcher never closes, ends or otherwise notifies a backing stream.
type Switcher[T any] struct {
	log              *slog.Logger
	name             string
	bufferWhenPaused bool
	maxBufferSize    int
	output           *Emitter[T]

	mu         sync.Mutex
	active     Duplex[T]
	binding    *binding[T]
	generation uint64
	pending    []T
	// detached is set while no stream is attached and holds the output paused.
	detached bool
	// userPaused records Pause/Resume from consumers, which survive attach.
	userPaused bool
	closed     bool
}

// New creates a Switcher attached to initial. A nil initial stream starts the
// Switcher paused.
func New[T any](initial Duplex[T], opts ...Option) (*Switcher[T], error) {
	opt := defaultOptions()
	if err := opt.Config(opts...); err != nil {
		return nil, err
	}

	s := &Switcher[T]{
		log:              opt.logger.With("module", "switcher", "switcher", opt.name),
		name:             opt.name,
		bufferWhenPaused: opt.bufferWhenPaused,
		maxBufferSize:    opt.maxBufferSize,
		output:           NewEmitter[T](),
	}

	if isNil(initial) {
		s.detached = true
		s.output.Pause()
		return s, nil
	}

	s.mu.Lock()
	s.attachLocked(initial)
	s.mu.Unlock()
	return s, nil
}

func (s *Switcher[T]) Name() string {
	return s.name
}

// Active returns the stream currently attached or nil.
func (s *Switcher[T]) Active() Duplex[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Pending returns the number of queued chunks waiting for a stream.
func (s *Switcher[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Switcher[T]) Subscribe(h Handlers[T]) func() { return s.output.Subscribe(h) }
func (s *Switcher[T]) IsPaused() bool                 { return s.output.IsPaused() }

// Pause holds the output until Resume. It stays in effect across Switch.
func (s *Switcher[T]) Pause() {
	s.mu.Lock()
	s.userPaused = true
	s.output.Pause()
	s.mu.Unlock()
}

// Resume releases a Pause. While detached the output stays paused until a
// stream is attached.
func (s *Switcher[T]) Resume() {
	s.mu.Lock()
	s.userPaused = false
	detached := s.detached
	s.mu.Unlock()

	if !detached {
		s.output.Resume()
	}
}

// Write forwards chunk to the active stream or applies the detached policy.
// Failures are reported on the Switcher's error notification. Write only
// returns an error after Close.
//
// If another caller is already writing to the active stream, chunk is queued
// behind it and Write returns without waiting.
func (s *Switcher[T]) Write(chunk T) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.ErrClosed
	}

	if b := s.binding; b != nil {
		if len(s.pending) > 0 {
			b.outbox = append(b.outbox, s.pending...)
			s.pending = nil
		}
		b.outbox = append(b.outbox, chunk)
		s.flushLocked(b)
		return nil
	}

	if !s.bufferWhenPaused {
		s.mu.Unlock()
		return nil
	}

	if len(s.pending) < s.maxBufferSize {
		s.pending = append(s.pending, chunk)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.log.Warn("Write: buffer overflow, chunk dropped", "max", s.maxBufferSize)
	s.output.Fail(fmt.Errorf("%w: %d chunks", errors.ErrBufferOverflow, s.maxBufferSize))
	return nil
}

// Switch detaches the active stream and attaches stream in its place. A nil
// stream leaves the Switcher detached and paused. Queued chunks are written to
// the new stream before Switch returns.
func (s *Switcher[T]) Switch(stream Duplex[T]) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.ErrClosed
	}

	s.detachLocked()

	if isNil(stream) {
		s.detached = true
		s.output.Pause()
		s.mu.Unlock()
		s.log.Info("detached")
		return nil
	}

	b := s.attachLocked(stream)
	b.outbox, s.pending = s.pending, nil
	b.flushing = true
	flushed := len(b.outbox)
	resume := s.detached && !s.userPaused
	s.detached = false
	s.mu.Unlock()

	if resume {
		s.output.Resume()
	}
	s.log.Info("attached", "flushed", flushed)

	s.mu.Lock()
	s.drainLocked(b)
	return nil
}

// Close detaches the active stream without closing it, drops queued chunks
// and ends the Switcher's output.
func (s *Switcher[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	dropped := len(s.pending)
	if s.binding != nil {
		dropped += len(s.binding.outbox)
		s.binding.outbox = nil
	}
	s.detachLocked()
	s.pending = nil
	resume := s.detached && !s.userPaused
	s.detached = false
	s.mu.Unlock()

	s.log.Info("closed", "dropped", dropped)
	if resume {
		s.output.Resume()
	}
	s.output.End()
	return nil
}

func (s *Switcher[T]) attachLocked(stream Duplex[T]) *binding[T] {
	s.generation++
	gen := s.generation
	s.active = stream
	s.binding = bind(stream, gen, Handlers[T]{
		Data:  func(chunk T) { s.onData(gen, chunk) },
		End:   func() { s.onEnd(gen) },
		Error: func(err error) { s.onError(gen, err) },
	})
	return s.binding
}

func (s *Switcher[T]) detachLocked() {
	if s.binding != nil {
		s.binding.unbind()
		s.binding = nil
	}
	s.active = nil
	s.generation++
}

// flushLocked writes b's outbox to its stream unless another caller already
// does. It must be called with mu held and returns with mu released.
func (s *Switcher[T]) flushLocked(b *binding[T]) {
	if b.flushing {
		s.mu.Unlock()
		return
	}
	b.flushing = true
	s.drainLocked(b)
}

// drainLocked writes b's outbox until it is empty. The caller must hold mu
// and have set b.flushing; mu is released on return.
func (s *Switcher[T]) drainLocked(b *binding[T]) {
	for len(b.outbox) > 0 {
		var zero T
		chunk := b.outbox[0]
		b.outbox[0] = zero
		b.outbox = b.outbox[1:]
		s.mu.Unlock()

		if err := b.stream.Write(chunk); err != nil {
			s.log.Error("Write: active stream", "generation", b.generation, "err", err)
			s.onError(b.generation, err)
		}

		s.mu.Lock()
	}
	b.outbox = nil
	b.flushing = false
	s.mu.Unlock()
}

// current reports whether a notification bound at gen may still be honored.
func (s *Switcher[T]) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.generation
}

func (s *Switcher[T]) onData(gen uint64, chunk T) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.log.Debug("onData: stale stream", "generation", gen)
		return
	}
	resume := s.detached && !s.userPaused
	s.detached = false
	s.mu.Unlock()

	if resume {
		s.output.Resume()
	}
	s.output.Push(chunk)
}

func (s *Switcher[T]) onEnd(gen uint64) {
	if !s.current(gen) {
		s.log.Debug("onEnd: stale stream", "generation", gen)
		return
	}
	s.output.End()
}

func (s *Switcher[T]) onError(gen uint64, err error) {
	if !s.current(gen) {
		s.log.Debug("onError: stale stream", "generation", gen, "err", err)
		return
	}
	s.output.Fail(&errors.StreamError{Err: err})
}
