package udprint

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format selects how a Printer renders payloads.
type Format string

const (
	// FormatBytes prints the payload as a byte-string literal: b'hello'.
	FormatBytes Format = "bytes"
	// FormatText prints the payload verbatim.
	FormatText Format = "text"
	// FormatJSON prints one JSON object per datagram.
	FormatJSON Format = "json"
)

var _ pflag.Value = (*Format)(nil)

func (f *Format) String() string {
	return string(*f)
}

func (f *Format) Set(s string) error {
	switch Format(s) {
	case FormatBytes, FormatText, FormatJSON:
		*f = Format(s)
		return nil
	}
	return errors.Errorf("unknown format %q, want one of bytes, text, json", s)
}

func (f *Format) Type() string {
	return "format"
}

// Printer writes one line per datagram to w.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format Format) *Printer {
	if format == "" {
		format = FormatBytes
	}
	return &Printer{w: w, format: format}
}

func (p *Printer) HandleDatagram(_ context.Context, d Datagram) error {
	line, err := p.render(d)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := io.WriteString(p.w, line); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

func (p *Printer) render(d Datagram) (string, error) {
	switch p.format {
	case FormatText:
		return fmt.Sprintf("received message: %s\n", d.Payload), nil
	case FormatJSON:
		b, err := datagramJSON(d)
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	default:
		return fmt.Sprintf("received message: %s\n", BytesLiteral(d.Payload)), nil
	}
}

func datagramJSON(d Datagram) ([]byte, error) {
	from := ""
	if d.From != nil {
		from = d.From.String()
	}
	st, err := structpb.NewStruct(map[string]any{
		"from":       from,
		"size":       len(d.Payload),
		"payload":    base64.StdEncoding.EncodeToString(d.Payload),
		"receivedAt": d.ReceivedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build datagram record")
	}
	b, err := protojson.Marshal(st)
	if err != nil {
		return nil, errors.Wrap(err, "marshal datagram record")
	}
	return b, nil
}
