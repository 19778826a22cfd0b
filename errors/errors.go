package errors

import (
	"errors"
	"fmt"
)

var (
	Is     = errors.Is
	Join   = errors.Join
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New

	ErrClosed         = errors.New("closed")
	ErrNotEnoughBytes = errors.New("not enough bytes")
	ErrNotFound       = errors.New("not found")
	ErrBadArgument    = errors.New("bad argument")
	ErrDuplicate      = errors.New("duplicate")
	ErrInvalidType    = errors.New("invalid type")
	ErrBadFrame       = errors.New("bad frame")
	ErrBufferOverflow = errors.New("buffer size limit exceeded")
	ErrStreamError    = errors.New("stream error")

	ErrStopBits = errors.New("stop bits")
)

// StreamError carries an error reported by the stream that was active at the time.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%v: %v", ErrStreamError, e.Err)
}

func (e *StreamError) Unwrap() []error {
	return []error{ErrStreamError, e.Err}
}

func Must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}
