package net

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/itohio/rewire/errors"
	"github.com/itohio/rewire/network"
)

var _ network.Node = (*Node)(nil)

// Node dials and serves stream sockets (tcp, unix) for the scheme of its peer.
type Node struct {
	log  *slog.Logger
	peer network.Peer
}

func New(log *slog.Logger, peer network.Peer) (*Node, error) {
	if log == nil || peer.Scheme() == "" {
		return nil, errors.ErrBadArgument
	}
	return &Node{
		log:  log,
		peer: peer,
	}, nil
}

// address returns the socket address of peer. Unix sockets are named by the
// URI path: unix:///tmp/relay.sock.
func address(peer network.Peer) string {
	if strings.HasPrefix(peer.Scheme(), "unix") && peer.Address() == "" {
		return "/" + peer.Path()
	}
	return peer.Address()
}

func (f *Node) Scheme() string {
	return f.peer.Scheme()
}

func (f *Node) Dial(ctx context.Context, peer network.Peer, o ...network.DialOpt) (io.ReadWriteCloser, error) {
	if f.peer.Scheme() != peer.Scheme() {
		return nil, errors.ErrBadArgument
	}
	var opts network.DialOptions
	if err := opts.Config(o...); err != nil {
		return nil, err
	}

	f.log.Debug("Dialing", "peer", peer)
	d := net.Dialer{Timeout: opts.Timeout}
	conn, err := d.DialContext(ctx, peer.Scheme(), address(peer))
	if err != nil {
		f.log.Error("Dial", "peer", peer, "err", err)
		return nil, err
	}

	return conn, nil
}

// Serve accepts connections on the node's own peer address until ctx is done.
func (f *Node) Serve(ctx context.Context, onConnect func(peer network.Peer, r io.ReadWriteCloser) error) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, f.peer.Scheme(), address(f.peer))
	if err != nil {
		return err
	}
	return f.serve(ctx, listener, onConnect)
}

func (f *Node) serve(ctx context.Context, listener net.Listener, onConnect func(peer network.Peer, r io.ReadWriteCloser) error) error {
	go func() {
		<-ctx.Done()
		f.log.Info("Listen.Close", "peer", f.peer, "err", ctx.Err())
		listener.Close()
	}()

	f.log.Info("Listen", "scheme", f.peer.Scheme(), "addr", listener.Addr(), "peer", f.peer)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			f.log.Error("Listen.Accept", "peer", f.peer, "err", err)
			return err
		}
		peer, err := network.NewPeer(f.Scheme(), conn.RemoteAddr().String(), "", nil)
		if err != nil {
			conn.Close()
			return err
		}
		if err := onConnect(peer, conn); err != nil {
			f.log.Error("Listen.onConnect", "peer", peer, "err", err)
			conn.Close()
		}
	}
}
