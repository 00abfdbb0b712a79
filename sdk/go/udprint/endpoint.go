package udprint

import (
	"net"
	"strconv"

	"github.com/go-faster/errors"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8000
)

var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Endpoint is the address/port pair a Listener binds. It is a value type and
// never changes once a Listener holds it.
type Endpoint struct {
	Host string
	Port int
}

func DefaultEndpoint() Endpoint {
	return Endpoint{Host: DefaultHost, Port: DefaultPort}
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Validate rejects hosts that are not IP literals and ports outside 0-65535.
// Port 0 asks the kernel for a free port.
func (e Endpoint) Validate() error {
	if net.ParseIP(e.Host) == nil {
		return errors.Wrapf(ErrInvalidEndpoint, "host %q is not an IP address", e.Host)
	}
	if e.Port < 0 || e.Port > 65535 {
		return errors.Wrapf(ErrInvalidEndpoint, "port %d out of range", e.Port)
	}
	return nil
}
