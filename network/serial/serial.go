package serial

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"

	"github.com/itohio/rewire/errors"
	"github.com/itohio/rewire/network"
)

var _ network.Node = (*Node)(nil)

const DefaultBaud = 115200

// Node opens serial ports as backing streams. The peer address names the
// device with dots in place of slashes:
//
//	serial://dev.ttyUSB0?baud=9600&parity=N&stop=1&bits=8&timeout=100ms
type Node struct {
	peer network.Peer
}

func New(peer network.Peer) (*Node, error) {
	if peer.Scheme() == "" || peer.Address() == "" {
		return nil, errors.ErrBadArgument
	}
	return &Node{peer: peer}, nil
}

func (f *Node) Scheme() string {
	return f.peer.Scheme()
}

type setter func(cfg *serial.Config, value string) error

var setters = map[string]setter{
	"baud": func(cfg *serial.Config, v string) error {
		baud, err := strconv.Atoi(v)
		if err != nil || baud <= 0 {
			return fmt.Errorf("%w: baud %q", errors.ErrBadArgument, v)
		}
		cfg.Baud = baud
		return nil
	},
	"parity": func(cfg *serial.Config, v string) error {
		p := serial.Parity(strings.ToUpper(v)[0])
		switch p {
		case serial.ParityNone, serial.ParityOdd, serial.ParityEven, serial.ParityMark, serial.ParitySpace:
			cfg.Parity = p
			return nil
		}
		return fmt.Errorf("%w: parity %q", errors.ErrBadArgument, v)
	},
	"stop": func(cfg *serial.Config, v string) error {
		switch v {
		case "1":
			cfg.StopBits = serial.Stop1
		case "1.5":
			cfg.StopBits = serial.Stop1Half
		case "2":
			cfg.StopBits = serial.Stop2
		default:
			return fmt.Errorf("%w: %q", errors.ErrStopBits, v)
		}
		return nil
	},
	"bits": func(cfg *serial.Config, v string) error {
		bits, err := strconv.ParseUint(v, 10, 8)
		if err != nil || bits < 5 || bits > 8 {
			return fmt.Errorf("%w: bits %q", errors.ErrBadArgument, v)
		}
		cfg.Size = byte(bits)
		return nil
	},
	"timeout": func(cfg *serial.Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: timeout %q", errors.ErrBadArgument, v)
		}
		cfg.ReadTimeout = d
		return nil
	},
}

// Config builds the port configuration described by peer. Unknown query
// values are ignored.
func Config(peer network.Peer) (*serial.Config, error) {
	cfg := &serial.Config{
		Name: devicePath(peer.Address()),
		Baud: DefaultBaud,
	}
	for key, set := range setters {
		v := peer.Values().Get(key)
		if v == "" {
			continue
		}
		if err := set(cfg, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// devicePath turns dev.ttyUSB0 into /dev/ttyUSB0. Names without dots (COM3)
// are used as is.
func devicePath(addr string) string {
	if !strings.Contains(addr, ".") {
		return addr
	}
	return "/" + strings.ReplaceAll(addr, ".", "/")
}

func (f *Node) Dial(ctx context.Context, peer network.Peer, o ...network.DialOpt) (io.ReadWriteCloser, error) {
	if f.peer.Scheme() != peer.Scheme() {
		return nil, errors.ErrBadArgument
	}
	var opts network.DialOptions
	if err := opts.Config(o...); err != nil {
		return nil, err
	}

	cfg, err := Config(peer)
	if err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Serve opens the node's own port and hands it to onConnect once. A serial
// line has a single peer, so there is nothing to accept.
func (f *Node) Serve(ctx context.Context, onConnect func(peer network.Peer, r io.ReadWriteCloser) error) error {
	rwc, err := f.Dial(ctx, f.peer)
	if err != nil {
		return err
	}
	return onConnect(f.peer, rwc)
}
