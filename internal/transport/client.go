// internal/transport/client.go
package transport

import (
	"errors"
	"fmt"

	"github.com/snoozemoose/spindled/internal/vfd"
)

// Client speaks Modbus RTU over a Port: it fills in the device address,
// appends the CRC, and validates the response envelope before handing the
// body to the caller. Not safe for concurrent use; the session serializes
// all round trips.
type Client struct {
	port    Port
	address byte
}

// NewClient wraps a port for the device at the given address.
func NewClient(port Port, address byte) (*Client, error) {
	if port == nil {
		return nil, errors.New("transport: port required")
	}
	if address == 0 || address > 247 {
		return nil, fmt.Errorf("transport: device address %d out of range (1-247)", address)
	}
	return &Client{port: port, address: address}, nil
}

// Close closes the underlying port.
func (c *Client) Close() error {
	return c.port.Close()
}

// RoundTrip sends one frame and returns the validated response body with
// the CRC stripped. The body keeps the address at offset 0 so value offsets
// match the frame layout.
func (c *Client) RoundTrip(frame vfd.Frame) ([]byte, error) {
	txLen := int(frame.TxLength)
	rxLen := int(frame.RxLength)

	adu := make([]byte, txLen+2)
	copy(adu, frame.Payload[:txLen])
	adu[0] = c.address

	crc := CRC16(adu[:txLen])
	adu[txLen] = byte(crc)
	adu[txLen+1] = byte(crc >> 8)

	if _, err := c.port.Write(adu); err != nil {
		return nil, fmt.Errorf("transport: write: %w", err)
	}

	resp := make([]byte, rxLen+2)
	if err := c.readFull(resp); err != nil {
		return nil, err
	}

	want := CRC16(resp[:rxLen])
	got := uint16(resp[rxLen]) | uint16(resp[rxLen+1])<<8
	if got != want {
		return nil, fmt.Errorf("transport: response crc mismatch: got=0x%04X want=0x%04X", got, want)
	}
	if resp[0] != c.address {
		return nil, fmt.Errorf("transport: response address mismatch: got=%d want=%d", resp[0], c.address)
	}
	if resp[1] != frame.Payload[1] {
		return nil, fmt.Errorf("transport: response function mismatch: got=0x%02X want=0x%02X", resp[1], frame.Payload[1])
	}

	return resp[:rxLen], nil
}

// readFull fills buf from the port. A zero-byte read means the port timed
// out with the response still incomplete.
func (c *Client) readFull(buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := c.port.Read(buf[read:])
		if err != nil {
			return fmt.Errorf("transport: read: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("transport: response timeout (%d of %d bytes)", read, len(buf))
		}
		read += n
	}
	return nil
}
