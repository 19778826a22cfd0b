package network

import (
	"context"
	"log/slog"

	"github.com/itohio/rewire/stream"
)

// Connect dials peer and wraps the connection into a byte stream that can be
// attached to a Switcher. The stream is bound to ctx.
func Connect(ctx context.Context, log *slog.Logger, d Dialer, peer Peer, o ...DialOpt) (*stream.Conn, error) {
	rwc, err := d.Dial(ctx, peer, o...)
	if err != nil {
		return nil, err
	}
	log.Info("Connected", "peer", peer)
	return stream.NewConn(ctx, log.With("peer", peer.String()), rwc, 0), nil
}
