package rewire

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/itohio/rewire/errors"
)

const DefaultMaxBufferSize = 100

type Option func(*Options) error

type Options struct {
	logger           *slog.Logger
	name             string
	bufferWhenPaused bool
	maxBufferSize    int
}

func defaultOptions() Options {
	return Options{
		logger:        slog.Default(),
		name:          uuid.NewString(),
		maxBufferSize: DefaultMaxBufferSize,
	}
}

func (o *Options) Config(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// WithLogger option configures Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) error {
		if l == nil {
			return errors.ErrBadArgument
		}
		o.logger = l
		return nil
	}
}

// WithName sets the name reported in log records. Defaults to a random UUID.
func WithName(name string) Option {
	return func(o *Options) error {
		if name == "" {
			return errors.ErrBadArgument
		}
		o.name = name
		return nil
	}
}

// WithBufferWhenPaused makes writes received with no active stream queue up
// instead of being dropped.
func WithBufferWhenPaused(enabled bool) Option {
	return func(o *Options) error {
		o.bufferWhenPaused = enabled
		return nil
	}
}

// WithMaxBufferSize configures how many chunks may be queued before overflow is reported.
func WithMaxBufferSize(size int) Option {
	return func(o *Options) error {
		if size < 0 {
			return errors.ErrBadArgument
		}
		o.maxBufferSize = size
		return nil
	}
}
