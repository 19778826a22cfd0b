package stream

import (
	"bytes"
	"io"

	"github.com/itohio/rewire"
)

type writer struct {
	sink rewire.Sink[[]byte]
}

// NewWriter adapts a byte Sink to io.WriteCloser. Each Write hands a copy of p
// to the sink. Close closes the sink if it is an io.Closer.
func NewWriter(sink rewire.Sink[[]byte]) io.WriteCloser {
	return writer{sink: sink}
}

func (w writer) Write(p []byte) (int, error) {
	if err := w.sink.Write(bytes.Clone(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w writer) Close() error {
	if c, ok := w.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type reader struct {
	*io.PipeReader
	unsubscribe func()
}

// NewReader adapts a byte Source to io.ReadCloser. Delivery blocks until the
// data is read, so a slow reader holds back the source. End of the source is
// io.EOF; errors reported by the source are not fatal and are ignored here.
func NewReader(src rewire.Source[[]byte]) io.ReadCloser {
	pr, pw := io.Pipe()
	unsubscribe := src.Subscribe(rewire.Handlers[[]byte]{
		Data: func(chunk []byte) { pw.Write(chunk) },
		End:  func() { pw.Close() },
	})
	return reader{PipeReader: pr, unsubscribe: unsubscribe}
}

func (r reader) Close() error {
	r.unsubscribe()
	return r.PipeReader.Close()
}
