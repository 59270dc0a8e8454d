// internal/vfd/frame_test.go
package vfd

import "testing"

func TestWriteRegister(t *testing.T) {
	f := WriteRegister(0x1000, 0x0001)

	want := [6]byte{0x00, 0x06, 0x10, 0x00, 0x00, 0x01}
	if f.Payload != want {
		t.Fatalf("payload %#v, want %#v", f.Payload, want)
	}
	if f.TxLength != 6 || f.RxLength != 6 {
		t.Fatalf("lengths tx=%d rx=%d", f.TxLength, f.RxLength)
	}
}

func TestReadFrames(t *testing.T) {
	f := ReadParameter(144)
	want := [6]byte{0x00, 0x01, 0x03, 144, 0x00, 0x00}
	if f.Payload != want || f.RxLength != 6 {
		t.Fatalf("ReadParameter: %#v rx=%d", f.Payload, f.RxLength)
	}

	f = ReadParameter8(143)
	if f.Payload[3] != 143 || f.RxLength != 5 {
		t.Fatalf("ReadParameter8: %#v rx=%d", f.Payload, f.RxLength)
	}

	f = ReadStatus(2)
	if f.Payload[1] != 0x04 || f.Payload[3] != 2 || f.RxLength != 6 {
		t.Fatalf("ReadStatus: %#v rx=%d", f.Payload, f.RxLength)
	}
}

func TestValueExtraction(t *testing.T) {
	resp := []byte{0x01, 0x01, 0x03, 0x05, 0x9C, 0x40}
	if got := Value16(resp); got != 40000 {
		t.Fatalf("Value16=%d, want 40000", got)
	}
	if got := Value8(resp); got != 0x9C {
		t.Fatalf("Value8=%#x, want 0x9c", got)
	}
}
