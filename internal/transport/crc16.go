// internal/transport/crc16.go
package transport

// CRC16 computes the Modbus CRC (polynomial 0xA001, initial 0xFFFF) over
// data. The wire order is low byte first.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
