package network

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/itohio/rewire/errors"
)

// Peer identifies a backing endpoint by URI such as [scheme]://[address]/[path][?params&...].
type Peer struct {
	scheme string
	addr   string
	path   string
	args   url.Values
}

func (p Peer) String() string {
	u := url.URL{
		Scheme:   p.scheme,
		Host:     p.addr,
		Path:     p.path,
		RawQuery: p.args.Encode(),
	}
	return u.String()
}

// NewPeer constructs a Peer from its components. The scheme is required.
func NewPeer(scheme, address, path string, args url.Values) (Peer, error) {
	if scheme == "" {
		return Peer{}, fmt.Errorf("%w: empty scheme", errors.ErrBadArgument)
	}
	return Peer{
		scheme: scheme,
		addr:   address,
		path:   path,
		args:   args,
	}, nil
}

// PeerFromString parses a URI into a Peer.
func PeerFromString(peer string) (Peer, error) {
	u, err := url.Parse(peer)
	if err != nil {
		return Peer{}, err
	}
	return NewPeer(u.Scheme, u.Host, strings.TrimPrefix(u.Path, "/"), u.Query())
}

func (p Peer) Values() url.Values { return p.args }
func (p Peer) Address() string    { return p.addr }
func (p Peer) Path() string       { return p.path }
func (p Peer) Scheme() string     { return p.scheme }

// Equal compares scheme and address only.
func (p Peer) Equal(v Peer) bool {
	return p.scheme == v.scheme && p.addr == v.addr
}
