package control

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/openosaka/udprint/sdk/go/udprint"
)

// DefaultProjectorPort is where projector simulators listen for TCP clients.
const DefaultProjectorPort = 12345

const (
	PowerQuery = "PWR?"
	PowerOn    = "PWR=1"

	lineTerminator = "\r\n"
)

// Projector simulates a projector's TCP control port. Every CRLF-terminated
// line containing PowerQuery is answered with PowerOn; anything else is
// ignored. An unterminated trailing line is discarded.
type Projector struct {
	logger udprint.Logger
}

func NewProjector(logger udprint.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{logger: logger}
}

// Serve accepts clients on lis until ctx is done, then closes lis and waits
// for open connections to finish.
func (p *Projector) Serve(ctx context.Context, lis net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = lis.Close()
	})
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	p.logger.Info("projector listening", slog.String("addr", lis.Addr().String()))
	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept projector client")
		}
		p.logger.Info("client connected", slog.String("remote", conn.RemoteAddr().String()))

		wg.Add(1)
		go func() {
			defer wg.Done()
			p.handle(ctx, conn)
		}()
	}
}

func (p *Projector) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	scanner := bufio.NewScanner(conn)
	scanner.Split(scanCRLF)
	for scanner.Scan() {
		line := scanner.Text()
		p.logger.Debug("projector line", slog.String("line", line))
		if !strings.Contains(line, PowerQuery) {
			continue
		}
		if _, err := conn.Write([]byte(PowerOn)); err != nil {
			p.logger.Error("failed to answer power query", slog.Any("error", err))
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		p.logger.Error("failed to read from projector client", slog.Any("error", err))
	}
	p.logger.Info("client disconnected", slog.String("remote", conn.RemoteAddr().String()))
}

func scanCRLF(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.Index(data, []byte(lineTerminator)); i >= 0 {
		return i + len(lineTerminator), data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), nil, nil
	}
	return 0, nil, nil
}
