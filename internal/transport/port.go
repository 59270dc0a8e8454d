// internal/transport/port.go
package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port is the slice of a serial port the transport uses. Satisfied by
// go.bug.st/serial.Port and by the simulator.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// OpenPort opens and drains a serial port configured for the inverter
// (8 data bits, no parity, one stop bit).
func OpenPort(device string, baudRate int, timeout time.Duration) (Port, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", device, err)
	}

	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: read timeout: %w", err)
	}

	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, err
	}
	if err := port.ResetOutputBuffer(); err != nil {
		port.Close()
		return nil, err
	}

	return port, nil
}
