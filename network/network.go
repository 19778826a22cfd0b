package network

import (
	"context"
	"io"
	"time"

	"github.com/itohio/rewire/errors"
)

// Dialer interface describes objects that can dial a remote peer.
type Dialer interface {
	// Scheme returns the scheme this dialer handles
	Scheme() string
	// Dial dials the remote peer and returns a ReadWriteCloser object
	Dial(ctx context.Context, peer Peer, o ...DialOpt) (io.ReadWriteCloser, error)
}

// Server interface describes objects that can listen for connections.
type Server interface {
	Serve(ctx context.Context, onConnect func(peer Peer, r io.ReadWriteCloser) error) error
}

// Node interface describes both a dialer and a server.
type Node interface {
	Dialer
	Server
}

type DialOpt func(*DialOptions) error

type DialOptions struct {
	Timeout time.Duration
}

func (o *DialOptions) Config(opts ...DialOpt) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// WithTimeout limits how long a single dial may take.
func WithTimeout(d time.Duration) DialOpt {
	return func(o *DialOptions) error {
		if d < 0 {
			return errors.ErrBadArgument
		}
		o.Timeout = d
		return nil
	}
}
