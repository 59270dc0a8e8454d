// internal/transport/sim.go
package transport

// SimPort emulates a BD600 inverter behind a Port. It parses each request
// on Write and queues the device's answer for the next Read. Used by the
// --dummy daemon mode and the end-to-end tests; no serial hardware needed.
type SimPort struct {
	address byte
	params  map[byte]uint16 // parameter registers, read with function 0x01
	status  [4]uint16       // status registers, read with function 0x04
	control uint16
	pending []byte
}

// NewSimPort creates a simulated inverter with typical spindle settings:
// 120-400 Hz, 2 poles, 3000 RPM rated at 50Hz.
func NewSimPort(address byte) *SimPort {
	return &SimPort{
		address: address,
		params: map[byte]uint16{
			5:   40000, // max frequency, centiHz
			11:  12000, // min frequency, centiHz
			14:  50,    // acceleration, x0.1s
			15:  50,    // deceleration, x0.1s
			143: 2,     // poles
			144: 3000,  // rated RPM at 50Hz
		},
	}
}

// Write accepts one request ADU. Requests with a bad CRC or a foreign
// address are dropped without an answer, like a real bus.
func (s *SimPort) Write(p []byte) (int, error) {
	if len(p) < 4 {
		return len(p), nil
	}

	body := p[:len(p)-2]
	crc := uint16(p[len(p)-2]) | uint16(p[len(p)-1])<<8
	if crc != CRC16(body) || body[0] != s.address {
		return len(p), nil
	}

	switch body[1] {
	case 0x06:
		s.writeRegister(body)
		s.respond(body) // echo
	case 0x01:
		s.respondParameter(body[3])
	case 0x04:
		s.respondStatus(body[3])
	}

	return len(p), nil
}

func (s *SimPort) writeRegister(body []byte) {
	reg := uint16(body[2])<<8 | uint16(body[3])
	value := uint16(body[4])<<8 | uint16(body[5])

	switch reg {
	case 0x1000:
		s.control = value
	case 0x3000:
		s.status[0] = uint16(uint32(value) * uint32(s.params[5]) / 10000)
	}

	// Output follows the setpoint instantly while running.
	if s.control == 1 || s.control == 2 {
		s.status[1] = s.status[0]
	} else {
		s.status[1] = 0
	}
}

func (s *SimPort) respondParameter(reg byte) {
	value := s.params[reg]
	if reg == 143 {
		// Pole count answers with a single byte.
		s.respond([]byte{s.address, 0x01, 0x03, reg, byte(value)})
		return
	}
	s.respond([]byte{s.address, 0x01, 0x03, reg, byte(value >> 8), byte(value)})
}

func (s *SimPort) respondStatus(reg byte) {
	var value uint16
	if int(reg) < len(s.status) {
		value = s.status[reg]
	}
	s.respond([]byte{s.address, 0x04, 0x03, reg, byte(value >> 8), byte(value)})
}

func (s *SimPort) respond(body []byte) {
	crc := CRC16(body)
	s.pending = append(s.pending[:0], body...)
	s.pending = append(s.pending, byte(crc), byte(crc>>8))
}

// Read drains the queued answer. An empty queue reads zero bytes, which the
// client treats as a timeout.
func (s *SimPort) Read(p []byte) (int, error) {
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *SimPort) Close() error { return nil }
