package udprint

import (
	"context"
	"net"
	"time"
)

// Datagram is one received UDP packet.
type Datagram struct {
	Payload    []byte
	From       *net.UDPAddr
	ReceivedAt time.Time
}

// Handler is called once per datagram, on the receive goroutine.
type Handler interface {
	HandleDatagram(ctx context.Context, d Datagram) error
}

type HandlerFunc func(ctx context.Context, d Datagram) error

func (f HandlerFunc) HandleDatagram(ctx context.Context, d Datagram) error {
	return f(ctx, d)
}
