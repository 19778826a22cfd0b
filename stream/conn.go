package stream

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/itohio/rewire"
	"github.com/itohio/rewire/errors"
	pool "github.com/libp2p/go-buffer-pool"
)

var _ rewire.Duplex[[]byte] = (*Conn)(nil)
var _ rewire.CloseNotifier = (*Conn)(nil)

const DefaultReadSize = 32 * 1024

// Conn converts a ReadWriteCloser into a byte Duplex. Reads are pumped from a
// goroutine and emitted as data; io.EOF ends the stream and any other read
// error is emitted as an error and stops the pump.
type Conn struct {
	rewire.Base
	*rewire.Emitter[[]byte]

	log      *slog.Logger
	rwc      io.ReadWriteCloser
	readSize int
	gate     gate
	wmu      sync.Mutex
	once     sync.Once
}

type readWriter struct {
	r io.Reader
	w io.Writer
}

func (rw readWriter) Read(buf []byte) (int, error)  { return rw.r.Read(buf) }
func (rw readWriter) Write(buf []byte) (int, error) { return rw.w.Write(buf) }
func (rw readWriter) Close() error {
	var errarr []error
	if c, ok := rw.r.(io.Closer); ok {
		errarr = append(errarr, c.Close())
	}
	if c, ok := rw.w.(io.Closer); ok {
		errarr = append(errarr, c.Close())
	}
	return errors.Join(errarr...)
}

// NewIO creates a Conn using io.Reader and io.Writer. Either is closed on
// Close if it implements io.Closer.
func NewIO(ctx context.Context, log *slog.Logger, r io.Reader, w io.Writer, readSize int) *Conn {
	return NewConn(ctx, log, readWriter{r: r, w: w}, readSize)
}

// NewConn creates a Conn over rwc reading at most readSize bytes per chunk.
// A non-positive readSize selects DefaultReadSize.
func NewConn(ctx context.Context, log *slog.Logger, rwc io.ReadWriteCloser, readSize int) *Conn {
	if readSize <= 0 {
		readSize = DefaultReadSize
	}
	ret := &Conn{
		Base:     rewire.NewBaseWithCtx(ctx),
		Emitter:  rewire.NewEmitter[[]byte](),
		log:      log,
		rwc:      rwc,
		readSize: readSize,
	}
	go ret.run()
	return ret
}

func (c *Conn) run() {
	ctx := c.Ctx()
	buf := pool.Get(c.readSize)
	defer pool.Put(buf)

	for {
		if !c.gate.wait(ctx) {
			c.stopped()
			return
		}
		n, err := c.rwc.Read(buf)
		if n > 0 {
			c.Push(bytes.Clone(buf[:n]))
		}
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			c.stopped()
			return
		}
		if errors.Is(err, io.EOF) {
			c.log.Debug("Conn.Read EOF")
			c.End()
			return
		}
		c.log.Error("Conn.Read", "err", err)
		c.Fail(err)
		return
	}
}

// Write writes chunk as a whole to the underlying writer.
func (c *Conn) Write(chunk []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.Ctx().Err() != nil {
		return errors.ErrClosed
	}
	n, err := c.rwc.Write(chunk)
	if err != nil {
		return err
	}
	if n != len(chunk) {
		return errors.ErrNotEnoughBytes
	}
	return nil
}

// Pause stops reading from the underlying reader.
func (c *Conn) Pause() {
	c.gate.close()
	c.Emitter.Pause()
}

func (c *Conn) Resume() {
	c.Emitter.Resume()
	c.gate.open()
}

// Close stops the pump and closes the underlying ReadWriteCloser.
func (c *Conn) Close() error {
	return c.CloseCause(nil)
}

// CloseCause is Close with a reason. A non-nil cause is emitted as an error
// once the pump stops.
func (c *Conn) CloseCause(cause error) error {
	var err error
	c.once.Do(func() {
		c.Base.CloseCause(cause)
		err = c.rwc.Close()
	})
	return err
}

func (c *Conn) stopped() {
	if err := c.Cause(); err != nil {
		c.Fail(err)
	}
}
