// internal/vfd/frame.go
package vfd

// Function codes understood by the inverter.
const (
	funcReadParameter = 0x01
	funcWriteRegister = 0x06
	funcReadStatus    = 0x04
)

// Frame is one request to the inverter, excluding the trailing CRC16.
// Payload[0] is the device address and is filled in by the transport.
type Frame struct {
	TxLength byte
	RxLength byte
	Payload  [6]byte
}

// WriteRegister builds a register-write request.
func WriteRegister(reg uint16, value uint16) Frame {
	return Frame{
		TxLength: 6,
		RxLength: 6,
		Payload: [6]byte{
			0x00, // address
			funcWriteRegister,
			byte(reg >> 8),
			byte(reg),
			byte(value >> 8),
			byte(value),
		},
	}
}

// ReadParameter builds a parameter-register read request. The 16-bit value
// arrives big-endian at response offsets 4 and 5.
func ReadParameter(reg byte) Frame {
	return readFrame(funcReadParameter, reg, 6)
}

// ReadParameter8 is ReadParameter for registers with a single-byte value;
// the value arrives at response offset 4 and the response is one byte short.
func ReadParameter8(reg byte) Frame {
	return readFrame(funcReadParameter, reg, 5)
}

// ReadStatus builds a status-register read request (registers 0-3).
func ReadStatus(reg byte) Frame {
	return readFrame(funcReadStatus, reg, 6)
}

func readFrame(function, reg, rxLength byte) Frame {
	return Frame{
		TxLength: 6,
		RxLength: rxLength,
		Payload: [6]byte{
			0x00, // address
			function,
			0x03, // length
			reg,
			0x00,
			0x00,
		},
	}
}

// Value16 extracts the big-endian 16-bit value of a read response.
func Value16(resp []byte) uint16 {
	return uint16(resp[4])<<8 | uint16(resp[5])
}

// Value8 extracts the single-byte value of a short read response.
func Value8(resp []byte) uint8 {
	return resp[4]
}
