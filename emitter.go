package rewire

import (
	"slices"
	"sync"
)

var _ Source[struct{}] = (*Emitter[struct{}])(nil)

type subscriber[T any] struct {
	id uint64
	h  Handlers[T]
}

type eventKind uint8

const (
	eventData eventKind = iota
	eventError
	eventEnd
)

type event[T any] struct {
	kind  eventKind
	chunk T
	err   error
}

// Emitter is the readable half of a duplex. It fans pushed chunks out to its
// subscribers in push order.
//
// While paused, pushed chunks are queued and delivered on Resume. End is
// delayed until the queue drains. Errors are never held back.
//
// Deliveries are serialized: one caller delivers everything that is queued
// while it holds the drain, including events raised from within handlers.
// Handlers may therefore call back into the Emitter.
type Emitter[T any] struct {
	mu       sync.Mutex
	subs     []subscriber[T]
	nextID   uint64
	paused   bool
	queue    []event[T]
	draining bool
	ended    bool
	endSent  bool
}

func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{}
}

func (e *Emitter[T]) Subscribe(h Handlers[T]) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber[T]{id: id, h: h})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			e.subs = slices.DeleteFunc(e.subs, func(s subscriber[T]) bool { return s.id == id })
			e.mu.Unlock()
		})
	}
}

// Subscribers returns the number of bound handler sets.
func (e *Emitter[T]) Subscribers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Push queues chunk for delivery. It returns false if the chunk is held
// because the emitter is paused, or dropped because it has ended.
func (e *Emitter[T]) Push(chunk T) bool {
	e.mu.Lock()
	if e.ended {
		e.mu.Unlock()
		return false
	}
	e.queue = append(e.queue, event[T]{kind: eventData, chunk: chunk})
	accepted := !e.paused
	e.drainLocked()
	return accepted
}

// End signals that no more data will follow. Only the first call has an effect.
func (e *Emitter[T]) End() {
	e.mu.Lock()
	if e.ended {
		e.mu.Unlock()
		return
	}
	e.ended = true
	e.drainLocked()
}

// Fail reports err to subscribers. It does not end the emitter.
func (e *Emitter[T]) Fail(err error) {
	e.mu.Lock()
	e.queue = append(e.queue, event[T]{kind: eventError, err: err})
	e.drainLocked()
}

// Ended reports whether End was delivered.
func (e *Emitter[T]) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endSent
}

func (e *Emitter[T]) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

func (e *Emitter[T]) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Resume unpauses the emitter and flushes queued chunks. A handler may pause
// the emitter again mid-flush; the rest stays queued.
func (e *Emitter[T]) Resume() {
	e.mu.Lock()
	e.paused = false
	e.drainLocked()
}

// drainLocked delivers queued events until nothing deliverable is left. It
// must be called with mu held and returns with mu released.
func (e *Emitter[T]) drainLocked() {
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	for {
		ev, ok := e.nextLocked()
		if !ok {
			break
		}
		subs := slices.Clone(e.subs)
		e.mu.Unlock()

		for _, s := range subs {
			s.h.dispatch(ev)
		}

		e.mu.Lock()
	}
	e.draining = false
	e.mu.Unlock()
}

func (e *Emitter[T]) nextLocked() (event[T], bool) {
	for i, ev := range e.queue {
		if ev.kind == eventData && e.paused {
			continue
		}
		e.queue = slices.Delete(e.queue, i, i+1)
		return ev, true
	}
	if len(e.queue) == 0 {
		e.queue = nil
	}
	if e.ended && !e.endSent && !e.paused && len(e.queue) == 0 {
		e.endSent = true
		return event[T]{kind: eventEnd}, true
	}
	return event[T]{}, false
}

func (h Handlers[T]) dispatch(ev event[T]) {
	switch ev.kind {
	case eventData:
		if h.Data != nil {
			h.Data(ev.chunk)
		}
	case eventError:
		if h.Error != nil {
			h.Error(ev.err)
		}
	case eventEnd:
		if h.End != nil {
			h.End()
		}
	}
}
