package udprint

import (
	"log/slog"
)

// DefaultBufferSize is the largest payload a single read returns.
const DefaultBufferSize = 1024

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type options struct {
	bufferSize int
	logger     Logger
}

func newOptions() *options {
	return &options{
		bufferSize: DefaultBufferSize,
		logger:     slog.Default(),
	}
}

type Option func(*options)

// WithBufferSize sets the read buffer. Datagrams longer than size are
// truncated. Listen rejects sizes below 1.
func WithBufferSize(size int) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
