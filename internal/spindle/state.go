// internal/spindle/state.go
package spindle

// State is the commanded rotation state of the spindle.
type State uint8

const (
	Disable State = iota
	Cw
	Ccw
)

func (s State) String() string {
	switch s {
	case Cw:
		return "cw"
	case Ccw:
		return "ccw"
	default:
		return "disable"
	}
}
