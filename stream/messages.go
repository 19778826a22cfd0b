package stream

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/itohio/rewire"
	"github.com/itohio/rewire/codec"
	"github.com/itohio/rewire/errors"
	"google.golang.org/protobuf/proto"
)

var _ rewire.Duplex[proto.Message] = (*Messages)(nil)

// Messages is a Duplex of protobuf messages framed with codec over a
// ReadWriteCloser. A frame that fails to decode is reported as an error and
// skipped; a broken stream stops the pump.
type Messages struct {
	rewire.Base
	*rewire.Emitter[proto.Message]

	log  *slog.Logger
	rwc  io.ReadWriteCloser
	gate gate
	wmu  sync.Mutex
	once sync.Once
}

func NewMessages(ctx context.Context, log *slog.Logger, rwc io.ReadWriteCloser) *Messages {
	ret := &Messages{
		Base:    rewire.NewBaseWithCtx(ctx),
		Emitter: rewire.NewEmitter[proto.Message](),
		log:     log,
		rwc:     rwc,
	}
	go ret.run()
	return ret
}

func (m *Messages) run() {
	ctx := m.Ctx()
	for {
		if !m.gate.wait(ctx) {
			m.stopped()
			return
		}

		buf, err := codec.ReadMessage(m.rwc)
		if err != nil {
			if ctx.Err() != nil {
				m.stopped()
				return
			}
			if err == io.EOF {
				m.End()
				return
			}
			m.log.Error("Messages.Read", "err", err)
			m.Fail(err)
			return
		}

		msg, err := codec.DecodeMessage(buf)
		codec.Release(buf)
		if err != nil {
			m.log.Warn("Messages.Decode", "err", err)
			m.Fail(err)
			continue
		}
		m.Push(msg)
	}
}

func (m *Messages) Write(msg proto.Message) error {
	buf, err := codec.EncodeMessage(msg)
	if err != nil {
		return err
	}
	defer codec.Release(buf)

	m.wmu.Lock()
	defer m.wmu.Unlock()
	if m.Ctx().Err() != nil {
		return errors.ErrClosed
	}
	n, err := m.rwc.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.ErrNotEnoughBytes
	}
	return nil
}

func (m *Messages) Pause() {
	m.gate.close()
	m.Emitter.Pause()
}

func (m *Messages) Resume() {
	m.Emitter.Resume()
	m.gate.open()
}

// Close stops the pump and closes the underlying ReadWriteCloser.
func (m *Messages) Close() error {
	return m.CloseCause(nil)
}

// CloseCause is Close with a reason. A non-nil cause is emitted as an error
// once the pump stops.
func (m *Messages) CloseCause(cause error) error {
	var err error
	m.once.Do(func() {
		m.Base.CloseCause(cause)
		err = m.rwc.Close()
	})
	return err
}

func (m *Messages) stopped() {
	if err := m.Cause(); err != nil {
		m.Fail(err)
	}
}
