package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/itohio/rewire/errors"
	pool "github.com/libp2p/go-buffer-pool"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

var (
	buffers pool.BufferPool
)

// Release returns a buffer obtained from EncodeMessage or ReadMessage to the pool.
func Release(b []byte) {
	buffers.Put(b)
}

// Size of the preamble: 4 bytes magic number, 4 bytes payload size
const PreambleSize = 4 + 4
const MagicNumber = 0xFADABEDA

// MaxFrameSize limits the payload of a single frame.
const MaxFrameSize = 1 << 20

// EncodeMessage wraps msg into an Any and frames it. The returned buffer
// should be released after it is written.
func EncodeMessage(msg proto.Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.ErrBadArgument
	}
	a, err := anypb.New(msg)
	if err != nil {
		return nil, err
	}
	return AppendMessageTo(nil, a)
}

// AppendMessageTo appends a frame carrying a to buf. A nil buf is taken from the pool.
func AppendMessageTo(buf []byte, a *anypb.Any) ([]byte, error) {
	if a == nil {
		return nil, errors.ErrBadArgument
	}

	size := proto.Size(a)
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: size %d", errors.ErrBadFrame, size)
	}

	if buf == nil {
		buf = buffers.Get(PreambleSize + size)
		buf = buf[:0]
	}

	buf = binary.BigEndian.AppendUint32(buf, MagicNumber)
	buf = binary.BigEndian.AppendUint32(buf, uint32(size))

	buf, err := proto.MarshalOptions{}.MarshalAppend(buf, a)
	if err != nil {
		buffers.Put(buf)
		return nil, err
	}

	return buf, nil
}

// ReadMessage reads one frame and returns its payload. io.EOF is returned only
// if the reader ended cleanly between frames.
func ReadMessage(r io.Reader) ([]byte, error) {
	var preamble [PreambleSize]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, err
	}
	magic := binary.BigEndian.Uint32(preamble[:])
	if magic != MagicNumber {
		return nil, fmt.Errorf("%w: magic %08x", errors.ErrBadFrame, magic)
	}
	size := int(binary.BigEndian.Uint32(preamble[4:]))
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: size %d", errors.ErrBadFrame, size)
	}

	buf := buffers.Get(size)
	if _, err := io.ReadFull(r, buf); err != nil {
		buffers.Put(buf)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	return buf, nil
}

// DecodeMessage unmarshals a payload returned by ReadMessage. The message type
// must be linked into the binary.
func DecodeMessage(data []byte) (proto.Message, error) {
	var a anypb.Any
	if err := proto.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrBadFrame, err)
	}
	msg, err := a.UnmarshalNew()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidType, a.GetTypeUrl(), err)
	}
	return msg, nil
}
