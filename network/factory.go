package network

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/itohio/rewire/errors"
	"golang.org/x/sync/errgroup"
)

var _ Node = (*Factory)(nil)

// Factory dispatches dials to the dialer registered for the peer's scheme.
type Factory struct {
	dialers map[string]Dialer
	servers map[string]Server
}

func New(dialers ...Dialer) (*Factory, error) {
	dm := make(map[string]Dialer, len(dialers))
	sm := make(map[string]Server, len(dialers))
	for _, d := range dialers {
		if d.Scheme() == "" {
			return nil, fmt.Errorf("%w: dialer without scheme", errors.ErrBadArgument)
		}
		if _, ok := dm[d.Scheme()]; ok {
			return nil, fmt.Errorf("%w: scheme %q", errors.ErrDuplicate, d.Scheme())
		}
		dm[d.Scheme()] = d

		if s, ok := d.(Server); ok {
			sm[d.Scheme()] = s
		}
	}
	return &Factory{
		dialers: dm,
		servers: sm,
	}, nil
}

func (f *Factory) Scheme() string {
	return ""
}

// Schemes lists the registered schemes in order.
func (f *Factory) Schemes() []string {
	return slices.Sorted(maps.Keys(f.dialers))
}

func (f *Factory) Dial(ctx context.Context, peer Peer, o ...DialOpt) (io.ReadWriteCloser, error) {
	d, ok := f.dialers[peer.Scheme()]
	if !ok {
		return nil, fmt.Errorf("%w: scheme %q, have %v", errors.ErrNotFound, peer.Scheme(), f.Schemes())
	}
	return d.Dial(ctx, peer, o...)
}

// Serve runs every registered server until ctx is done or one of them fails.
func (f *Factory) Serve(ctx context.Context, onConnect func(peer Peer, r io.ReadWriteCloser) error) error {
	eg, ctx := errgroup.WithContext(ctx)

	for _, s := range f.servers {
		eg.Go(func() error { return s.Serve(ctx, onConnect) })
	}

	return eg.Wait()
}
