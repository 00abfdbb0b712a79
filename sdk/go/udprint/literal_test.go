package udprint

import "testing"

func TestBytesLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "empty", input: nil, want: `b''`},
		{name: "ascii", input: []byte("hello"), want: `b'hello'`},
		{name: "single quote switches to double", input: []byte("it's"), want: `b"it's"`},
		{name: "both quotes", input: []byte(`it's "x"`), want: `b'it\'s "x"'`},
		{name: "double quote only", input: []byte(`say "hi"`), want: `b'say "hi"'`},
		{name: "backslash", input: []byte(`a\b`), want: `b'a\\b'`},
		{name: "whitespace escapes", input: []byte("a\tb\nc\r"), want: `b'a\tb\nc\r'`},
		{name: "control and high bytes", input: []byte{0x00, 0x1f, 0x7f, 0xff}, want: `b'\x00\x1f\x7f\xff'`},
		{name: "utf8 is bytes", input: []byte("é"), want: `b'\xc3\xa9'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BytesLiteral(tt.input); got != tt.want {
				t.Errorf("BytesLiteral(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
