package stream

import (
	"context"
	"sync"

	"github.com/itohio/rewire"
	"github.com/itohio/rewire/errors"
)

var _ rewire.Duplex[[]byte] = (*Pipe[[]byte])(nil)

// Pipe is an in-memory pass-through duplex: every chunk written to it is
// emitted as data, in order, from a separate goroutine.
type Pipe[T any] struct {
	rewire.Base
	*rewire.Emitter[T]

	gate gate
	c    chan T

	mu      sync.Mutex
	ended   bool
	done    chan struct{}
	senders sync.WaitGroup
}

// NewPipe creates a Pipe that can hold size chunks not yet emitted. The pipe
// stops when ctx is done or Close is called.
func NewPipe[T any](ctx context.Context, size int) *Pipe[T] {
	ret := &Pipe[T]{
		Base:    rewire.NewBaseWithCtx(ctx),
		Emitter: rewire.NewEmitter[T](),
		c:       make(chan T, size),
		done:    make(chan struct{}),
	}
	go ret.run()
	return ret
}

func (p *Pipe[T]) run() {
	ctx := p.Ctx()
	for {
		if !p.gate.wait(ctx) {
			p.stopped()
			return
		}
		select {
		case <-ctx.Done():
			p.stopped()
			return
		case chunk, ok := <-p.c:
			if !ok {
				p.Emitter.End()
				return
			}
			p.Push(chunk)
		}
	}
}

func (p *Pipe[T]) stopped() {
	if err := p.Cause(); err != nil {
		p.Fail(err)
	}
}

// Write queues chunk for emission. It blocks while the pipe is full and gives
// up with ErrClosed once the pipe is ended or closed.
func (p *Pipe[T]) Write(chunk T) error {
	p.mu.Lock()
	if p.ended {
		p.mu.Unlock()
		return errors.ErrClosed
	}
	p.senders.Add(1)
	p.mu.Unlock()
	defer p.senders.Done()

	select {
	case <-p.done:
		return errors.ErrClosed
	case <-p.Ctx().Done():
		return errors.ErrClosed
	case p.c <- chunk:
		return nil
	}
}

// End stops accepting writes and releases blocked writers. End is emitted once
// the chunks already accepted are out.
func (p *Pipe[T]) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return
	}
	p.ended = true
	close(p.done)
	go func() {
		p.senders.Wait()
		close(p.c)
	}()
}

// Pause stops the emitting goroutine. Writes keep queueing until the pipe is full.
func (p *Pipe[T]) Pause() {
	p.gate.close()
	p.Emitter.Pause()
}

func (p *Pipe[T]) Resume() {
	p.Emitter.Resume()
	p.gate.open()
}
