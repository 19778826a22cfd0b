package stream

import (
	"context"
	"sync"
)

// gate blocks a pump goroutine while its stream is paused.
type gate struct {
	mu sync.Mutex
	c  chan struct{}
}

func (g *gate) close() {
	g.mu.Lock()
	if g.c == nil {
		g.c = make(chan struct{})
	}
	g.mu.Unlock()
}

func (g *gate) open() {
	g.mu.Lock()
	if g.c != nil {
		close(g.c)
		g.c = nil
	}
	g.mu.Unlock()
}

// wait returns false if ctx is done before the gate opens.
func (g *gate) wait(ctx context.Context) bool {
	g.mu.Lock()
	c := g.c
	g.mu.Unlock()
	if c == nil {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-c:
		return true
	}
}
