package udprint

import (
	"bytes"
	"context"
	"encoding/base64"
	"net"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestPrinterFormats(t *testing.T) {
	d := Datagram{
		Payload:    []byte("hello"),
		From:       &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000},
		ReceivedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("bytes", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, FormatBytes).HandleDatagram(context.Background(), d); err != nil {
			t.Fatal(err)
		}
		if got, want := buf.String(), "received message: b'hello'\n"; got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("default is bytes", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, "").HandleDatagram(context.Background(), d); err != nil {
			t.Fatal(err)
		}
		if got, want := buf.String(), "received message: b'hello'\n"; got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, FormatText).HandleDatagram(context.Background(), d); err != nil {
			t.Fatal(err)
		}
		if got, want := buf.String(), "received message: hello\n"; got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, FormatJSON).HandleDatagram(context.Background(), d); err != nil {
			t.Fatal(err)
		}
		line := buf.String()
		if strings.Count(line, "\n") != 1 || !strings.HasSuffix(line, "\n") {
			t.Fatalf("expected a single line, got %q", line)
		}

		var st structpb.Struct
		if err := protojson.Unmarshal([]byte(line), &st); err != nil {
			t.Fatal(err)
		}
		fields := st.GetFields()
		if got := fields["from"].GetStringValue(); got != "127.0.0.1:40000" {
			t.Errorf("from = %q", got)
		}
		if got := fields["size"].GetNumberValue(); got != 5 {
			t.Errorf("size = %v", got)
		}
		payload, err := base64.StdEncoding.DecodeString(fields["payload"].GetStringValue())
		if err != nil || string(payload) != "hello" {
			t.Errorf("payload = %q, err = %v", payload, err)
		}
		if got := fields["receivedAt"].GetStringValue(); got != "2024-05-01T12:00:00Z" {
			t.Errorf("receivedAt = %q", got)
		}
	})
}

func TestFormatSet(t *testing.T) {
	var f Format
	for _, s := range []string{"bytes", "text", "json"} {
		if err := f.Set(s); err != nil {
			t.Fatalf("Set(%q): %v", s, err)
		}
		if f.String() != s {
			t.Fatalf("String() = %q, want %q", f.String(), s)
		}
	}
	if err := f.Set("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if f != FormatJSON {
		t.Fatalf("failed Set changed the value to %q", f)
	}
}
