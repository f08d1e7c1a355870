package device

import "fmt"

// State is the power state of the board.
type State int

// States of the board. Under normal operation the board only moves between
// StateAwake and StateAsleep; StateOff is left by power-on only.
const (
	StateOff State = iota
	StateAwake
	StateAsleep
)

func (s State) String() string {
	switch s {
	case StateAwake:
		return "AWAKE"
	case StateAsleep:
		return "ASLEEP"
	default:
		return "OFF"
	}
}

// MarshalText makes the state readable in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "AWAKE":
		*s = StateAwake
	case "ASLEEP":
		*s = StateAsleep
	case "OFF":
		*s = StateOff
	default:
		return fmt.Errorf("unknown board state %q", text)
	}

	return nil
}
