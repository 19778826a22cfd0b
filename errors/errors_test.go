package errors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamError(t *testing.T) {
	err := error(&StreamError{Err: io.ErrUnexpectedEOF})

	assert.True(t, Is(err, ErrStreamError))
	assert.True(t, Is(err, io.ErrUnexpectedEOF))
	assert.False(t, Is(err, ErrBufferOverflow))
	assert.Equal(t, "stream error: unexpected EOF", err.Error())

	var se *StreamError
	assert.True(t, As(err, &se))
	assert.Equal(t, io.ErrUnexpectedEOF, se.Err)
}

func TestMust(t *testing.T) {
	assert.Equal(t, 3, Must(3, nil))
	assert.Panics(t, func() { Must(0, ErrBadArgument) })
}
