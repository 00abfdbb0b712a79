package control

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/openosaka/udprint/sdk/go/udprint"
)

// DefaultSettleDelay is how long SoftReset and ShowScene take to complete.
const DefaultSettleDelay = 500 * time.Millisecond

// State is what the dispatcher has been told so far.
type State struct {
	Running bool
	Debug   bool
	Scene   int
}

type Dispatcher struct {
	mu     sync.Mutex
	state  State
	level  *slog.LevelVar
	settle time.Duration
	logger udprint.Logger
}

type DispatcherOption func(*Dispatcher)

func WithSettleDelay(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.settle = d
	}
}

// WithLevelVar lets DebugOn and DebugOff change the level of the handler
// that owns lv.
func WithLevelVar(lv *slog.LevelVar) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.level = lv
	}
}

func WithDispatcherLogger(logger udprint.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.logger = logger
	}
}

func NewDispatcher(options ...DispatcherOption) *Dispatcher {
	disp := &Dispatcher{
		settle: DefaultSettleDelay,
		logger: slog.Default(),
	}
	for _, o := range options {
		o(disp)
	}
	return disp
}

func (disp *Dispatcher) State() State {
	disp.mu.Lock()
	defer disp.mu.Unlock()
	return disp.state
}

// Run drains inbox until ctx is done.
func (disp *Dispatcher) Run(ctx context.Context, inbox *Inbox) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-inbox.Ready():
		}
		disp.logger.Debug("draining inbox", slog.Int("queued", inbox.Len()))

		for payload := inbox.Pop(); payload != nil; payload = inbox.Pop() {
			if err := disp.HandleMessage(ctx, payload); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// HandleMessage decodes payload as ASCII and executes it. Unknown and
// malformed commands are logged and skipped.
func (disp *Dispatcher) HandleMessage(ctx context.Context, payload []byte) error {
	msg := asciiString(payload)
	disp.logger.Info("data received")
	disp.logger.Debug("received message", slog.String("msg", msg))

	cmd, err := ParseCommand(msg)
	switch {
	case errors.Is(err, ErrInvalidCommand):
		disp.logger.Warn("invalid ShowScene command format", slog.String("msg", msg))
		return nil
	case errors.Is(err, ErrUnknownCommand):
		disp.logger.Debug("ignoring unknown command", slog.String("msg", msg))
		return nil
	case err != nil:
		return err
	}
	return disp.Execute(ctx, cmd)
}

func (disp *Dispatcher) Execute(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case GetContent:
		disp.logger.Info("getting content")
	case Start:
		disp.update(func(s *State) { s.Running = true })
		disp.logger.Info("started")
	case Stop:
		disp.update(func(s *State) { s.Running = false })
		disp.logger.Info("stopped")
	case SoftReset:
		disp.logger.Info("soft resetting")
		if err := disp.wait(ctx); err != nil {
			return err
		}
		disp.logger.Info("soft reset complete")
	case DebugOn:
		disp.setDebug(true)
		disp.logger.Info("debug mode on")
	case DebugOff:
		disp.logger.Info("debug mode off")
		disp.setDebug(false)
	case ShowScene:
		disp.logger.Info("scene command received", slog.Int("scene", cmd.Scene))
		if err := disp.wait(ctx); err != nil {
			return err
		}
		disp.update(func(s *State) { s.Scene = cmd.Scene })
		disp.logger.Info("scene switched", slog.Int("scene", cmd.Scene))
	default:
		return errors.Wrapf(ErrUnknownCommand, "%q", cmd.Name)
	}
	return nil
}

func (disp *Dispatcher) update(fn func(*State)) {
	disp.mu.Lock()
	defer disp.mu.Unlock()
	fn(&disp.state)
}

func (disp *Dispatcher) setDebug(on bool) {
	disp.update(func(s *State) { s.Debug = on })
	if disp.level == nil {
		return
	}
	if on {
		disp.level.Set(slog.LevelDebug)
	} else {
		disp.level.Set(slog.LevelInfo)
	}
}

func (disp *Dispatcher) wait(ctx context.Context) error {
	if disp.settle <= 0 {
		return nil
	}
	t := time.NewTimer(disp.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// asciiString maps bytes above 0x7f to '?'.
func asciiString(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c > 0x7f {
			c = '?'
		}
		out[i] = c
	}
	return string(out)
}
