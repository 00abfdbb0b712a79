package control

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidCommand = errors.New("invalid command format")
)

type Name string

const (
	GetContent Name = "GetContent"
	Stop       Name = "Stop"
	Start      Name = "Start"
	SoftReset  Name = "SoftReset"
	DebugOn    Name = "DebugOn"
	DebugOff   Name = "DebugOff"
	ShowScene  Name = "ShowScene"
)

type Command struct {
	Name Name
	// Scene is only set for ShowScene.
	Scene int
}

// ParseCommand decodes one ASCII control message. Plain commands must match
// exactly; any message mentioning ShowScene must be "ShowScene,<n>".
func ParseCommand(msg string) (Command, error) {
	switch Name(msg) {
	case GetContent, Stop, Start, SoftReset, DebugOn, DebugOff:
		return Command{Name: Name(msg)}, nil
	}

	if strings.Contains(msg, string(ShowScene)) {
		parts := strings.Split(msg, ",")
		if len(parts) != 2 {
			return Command{}, errors.Wrapf(ErrInvalidCommand, "%q", msg)
		}
		scene, err := strconv.Atoi(parts[1])
		if err != nil {
			return Command{}, errors.Wrapf(ErrInvalidCommand, "%q", msg)
		}
		return Command{Name: ShowScene, Scene: scene}, nil
	}

	return Command{}, errors.Wrapf(ErrUnknownCommand, "%q", msg)
}
