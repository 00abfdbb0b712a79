package udprint

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrListenerClosed    = errors.New("listener closed")
	ErrInvalidBufferSize = errors.New("invalid buffer size")
)

// Listener owns exactly one bound UDP endpoint for its whole lifetime.
type Listener struct {
	endpoint   Endpoint
	conn       *net.UDPConn
	bufferSize int
	logger     Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Listen binds endpoint. It fails if the address is invalid or already in
// use; there is no retry and no fallback port.
func Listen(ctx context.Context, endpoint Endpoint, options ...Option) (*Listener, error) {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}

	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	if opts.bufferSize < 1 {
		return nil, errors.Wrapf(ErrInvalidBufferSize, "%d", opts.bufferSize)
	}

	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, "udp", endpoint.String())
	if err != nil {
		return nil, errors.Wrapf(err, "bind %s", endpoint)
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, errors.Errorf("bind %s: unexpected packet conn %T", endpoint, pc)
	}

	l := &Listener{
		endpoint:   endpoint,
		conn:       conn,
		bufferSize: opts.bufferSize,
		logger:     opts.logger,
	}
	l.logger.Info("UDP listener bound", slog.String("addr", l.Addr().String()))
	return l, nil
}

// Addr returns the bound address, with the kernel-assigned port when the
// endpoint asked for port 0.
func (l *Listener) Addr() *net.UDPAddr {
	return l.conn.LocalAddr().(*net.UDPAddr)
}

// Serve reads datagrams and passes each one to handler until ctx is done or
// the listener is closed, in which case it returns nil. A read error or a
// handler error stops the loop and is returned.
func (l *Listener) Serve(ctx context.Context, handler Handler) error {
	if l.closed.Load() {
		return ErrListenerClosed
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-done:
		}
	}()

	buf := make([]byte, l.bufferSize)
	for {
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if l.closed.Load() {
				l.logger.Debug("quit reading", slog.String("addr", l.endpoint.String()))
				return nil
			}
			return errors.Wrap(err, "read datagram")
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		l.logger.Debug("received datagram", slog.String("from", from.String()), slog.Int("n", n))

		d := Datagram{
			Payload:    payload,
			From:       from,
			ReceivedAt: time.Now(),
		}
		if err := handler.HandleDatagram(ctx, d); err != nil {
			return errors.Wrap(err, "handle datagram")
		}
	}
}

// Close releases the socket. It is safe to call more than once.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		l.closeErr = l.conn.Close()
	})
	return l.closeErr
}
