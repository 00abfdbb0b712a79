package control

import (
	"errors"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr error
	}{
		{name: "GetContent", input: "GetContent", want: Command{Name: GetContent}},
		{name: "Stop", input: "Stop", want: Command{Name: Stop}},
		{name: "Start", input: "Start", want: Command{Name: Start}},
		{name: "SoftReset", input: "SoftReset", want: Command{Name: SoftReset}},
		{name: "DebugOn", input: "DebugOn", want: Command{Name: DebugOn}},
		{name: "DebugOff", input: "DebugOff", want: Command{Name: DebugOff}},
		{name: "ShowScene", input: "ShowScene,3", want: Command{Name: ShowScene, Scene: 3}},
		{name: "ShowScene negative", input: "ShowScene,-1", want: Command{Name: ShowScene, Scene: -1}},
		{name: "ShowScene missing scene", input: "ShowScene", wantErr: ErrInvalidCommand},
		{name: "ShowScene not a number", input: "ShowScene,two", wantErr: ErrInvalidCommand},
		{name: "ShowScene too many parts", input: "ShowScene,1,2", wantErr: ErrInvalidCommand},
		{name: "case sensitive", input: "start", wantErr: ErrUnknownCommand},
		{name: "trailing newline", input: "Stop\n", wantErr: ErrUnknownCommand},
		{name: "empty", input: "", wantErr: ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseCommand(%q) err = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCommand(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseCommand(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
