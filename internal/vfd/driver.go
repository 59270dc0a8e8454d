// internal/vfd/driver.go
package vfd

import (
	"github.com/snoozemoose/spindled/internal/spindle"
)

// ResponseParser consumes the body of one validated response. The transport
// guarantees length and checksum before a parser runs; parsers perform no IO
// and are invoked exactly once per response.
type ResponseParser func(resp []byte) error

// Parameters holds the device constants discovered at startup.
// Frequencies are in centiHz (Hz x 100).
type Parameters struct {
	MinFrequency uint32
	MaxFrequency uint32
	MaxRPMAt50Hz uint32
	NumberPoles  uint16
	NumberPhases uint16

	// Slop is the minimum device-speed delta worth re-issuing a speed
	// command for.
	Slop uint32
}

// Driver adapts the generic spindle abstraction to one inverter model.
// All methods are synchronous and free of IO; the transport owns the serial
// line and drives the driver one request/response at a time.
type Driver interface {
	// DirectionCommand builds the frame that sets the rotation state.
	DirectionCommand(state spindle.State) Frame

	// SetSpeedCommand builds the frame that sets the target device speed.
	SetSpeedCommand(devSpeed uint32) Frame

	// InitializationSequence returns the discovery request for the given
	// step index and the parser for its response. ok is false once the
	// sequence is exhausted.
	InitializationSequence(index int) (frame Frame, parser ResponseParser, ok bool)

	// StatusRequest returns the next cyclic telemetry read.
	StatusRequest() (Frame, ResponseParser)

	// CurrentSpeedRequest returns the read that refreshes the synchronized
	// device speed.
	CurrentSpeedRequest() (Frame, ResponseParser)

	// Parameters returns a copy of the discovered device constants.
	Parameters() Parameters

	// Speeds returns the RPM conversion table owned by the driver.
	Speeds() *spindle.SpeedMap
}
