package stream_test

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/itohio/rewire"
	"github.com/itohio/rewire/errors"
	"github.com/itohio/rewire/stream"
	"github.com/itohio/rewire/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestMessages_ThroughSwitcher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, b := net.Pipe()
	local := stream.NewMessages(ctx, slog.Default(), a)
	remote := stream.NewMessages(ctx, slog.Default(), b)
	defer local.Close()
	defer remote.Close()

	sw, err := rewire.New[proto.Message](local)
	require.NoError(t, err)
	out := testutil.Record[proto.Message](sw, 4)
	received := testutil.Record[proto.Message](remote, 4)

	require.NoError(t, sw.Write(wrapperspb.String("request")))
	msg, err := testutil.RecvTimeout(received.C(), time.Second)
	require.NoError(t, err)
	assert.True(t, proto.Equal(wrapperspb.String("request"), msg))

	require.NoError(t, remote.Write(wrapperspb.UInt32(7)))
	msg, err = testutil.RecvTimeout(out.C(), time.Second)
	require.NoError(t, err)
	assert.True(t, proto.Equal(wrapperspb.UInt32(7), msg))

	require.NoError(t, remote.Close())
	assert.True(t, testutil.CtxRecv(ctx, out.EndC()))
}

func TestMessages_BadFrame(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, b := net.Pipe()
	m := stream.NewMessages(ctx, slog.Default(), a)
	defer m.Close()
	rec := testutil.Record[proto.Message](m, 4)

	go b.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	require.Eventually(t, func() bool { return len(rec.Errors()) > 0 }, time.Second, time.Millisecond)
	assert.ErrorIs(t, rec.Errors()[0], errors.ErrBadFrame)
}

func TestMessages_WriteNil(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, _ := net.Pipe()
	m := stream.NewMessages(ctx, slog.Default(), a)
	defer m.Close()

	assert.ErrorIs(t, m.Write(nil), errors.ErrBadArgument)
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Write(wrapperspb.Bool(true)), errors.ErrClosed)
}
