package stream_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/itohio/rewire"
	"github.com/itohio/rewire/stream"
	"github.com/itohio/rewire/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	p := stream.NewPipe[[]byte](ctx, 4)
	sw, err := rewire.New[[]byte](p)
	require.NoError(t, err)
	out := testutil.Record[[]byte](sw, 4)

	w := stream.NewWriter(sw)
	buf := []byte("abc")
	n, err := w.Write(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	buf[0] = 'x'

	v, err := testutil.RecvTimeout(out.C(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)

	require.NoError(t, w.Close())
	_, err = fmt.Fprint(w, "closed")
	assert.Error(t, err)
}

func TestReader(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	p := stream.NewPipe[[]byte](ctx, 4)
	r := stream.NewReader(p)
	defer r.Close()

	require.NoError(t, p.Write([]byte("hello ")))
	require.NoError(t, p.Write([]byte("world")))
	p.End()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestReader_Close(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	p := stream.NewPipe[[]byte](ctx, 4)
	r := stream.NewReader(p)
	require.NoError(t, r.Close())
	assert.Equal(t, 0, p.Subscribers())

	_, err := r.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
