package control

import (
	"context"
	"log/slog"
	"sync"

	"github.com/openosaka/udprint/sdk/go/udprint"
)

// DefaultInboxSize is how many payloads an Inbox holds before dropping.
const DefaultInboxSize = 100

// Inbox queues received payloads in arrival order. When full, the newest
// payload is dropped.
type Inbox struct {
	mu     sync.Mutex
	queue  [][]byte
	size   int
	ready  chan struct{}
	logger udprint.Logger
}

func NewInbox(size int, logger udprint.Logger) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{
		size:   size,
		ready:  make(chan struct{}, 1),
		logger: logger,
	}
}

// HandleDatagram lets the Inbox sit directly behind a udprint.Listener.
func (in *Inbox) HandleDatagram(_ context.Context, d udprint.Datagram) error {
	in.Push(d.Payload)
	return nil
}

func (in *Inbox) Push(payload []byte) {
	if len(payload) == 0 {
		return
	}

	in.mu.Lock()
	if len(in.queue) >= in.size {
		in.mu.Unlock()
		in.logger.Error("too many incoming messages to handle, dropping", slog.Int("queued", in.size))
		return
	}
	in.queue = append(in.queue, payload)
	in.mu.Unlock()

	select {
	case in.ready <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest payload, or nil when the Inbox is empty.
func (in *Inbox) Pop() []byte {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.queue) == 0 {
		return nil
	}
	payload := in.queue[0]
	in.queue[0] = nil
	in.queue = in.queue[1:]
	return payload
}

func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.queue)
}

// Ready receives a value after one or more pushes since the last receive.
func (in *Inbox) Ready() <-chan struct{} {
	return in.ready
}
