// internal/vfd/bd600_test.go
package vfd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/mdouchement/logger"

	"github.com/snoozemoose/spindled/internal/spindle"
)

func discard() logger.Logger {
	h := logger.NewSlogTextHandler(io.Discard, &logger.SlogTextOption{Level: slog.LevelError})
	return logger.WrapSlogHandler(h)
}

func newTestBD600(t *testing.T) *BD600 {
	t.Helper()
	return newBD600(discard()).(*BD600)
}

// resp16 builds a parameter-read response body carrying a 16-bit value.
func resp16(value uint16) []byte {
	return []byte{0x01, 0x01, 0x03, 0x00, byte(value >> 8), byte(value)}
}

// resp8 builds a short response body carrying a single-byte value.
func resp8(value uint8) []byte {
	return []byte{0x01, 0x01, 0x03, 0x00, value}
}

func TestBD600_DirectionCommand(t *testing.T) {
	tests := []struct {
		state spindle.State
		code  byte
	}{
		{spindle.Cw, 0x01},
		{spindle.Ccw, 0x02},
		{spindle.Disable, 0x05},
		{spindle.State(42), 0x05}, // anything else stops
	}

	d := newTestBD600(t)

	for _, tt := range tests {
		f := d.DirectionCommand(tt.state)

		if f.TxLength != 6 || f.RxLength != 6 {
			t.Fatalf("%v: lengths tx=%d rx=%d, want 6/6", tt.state, f.TxLength, f.RxLength)
		}

		want := [6]byte{0x00, 0x06, 0x10, 0x00, 0x00, tt.code}
		if f.Payload != want {
			t.Fatalf("%v: payload %#v, want %#v", tt.state, f.Payload, want)
		}
	}
}

func TestBD600_SetSpeedCommand(t *testing.T) {
	d := newTestBD600(t)
	if err := d.parseMaxFrequency(resp16(40000)); err != nil {
		t.Fatalf("parseMaxFrequency err=%v", err)
	}

	tests := []struct {
		devSpeed uint32
		pct      uint16
	}{
		{20000, 5000}, // 50.00%
		{40000, 10000},
		{200, 50}, // 0.50%: sub-percent targets must not collapse to zero
		{0, 0},
	}

	for _, tt := range tests {
		f := d.SetSpeedCommand(tt.devSpeed)

		want := [6]byte{0x00, 0x06, 0x30, 0x00, byte(tt.pct >> 8), byte(tt.pct)}
		if f.Payload != want {
			t.Fatalf("devSpeed=%d: payload %#v, want %#v", tt.devSpeed, f.Payload, want)
		}
	}
}

func TestBD600_SetSpeedCommand_OutOfRangeStillSent(t *testing.T) {
	d := newTestBD600(t)
	if err := d.parseMaxFrequency(resp16(40000)); err != nil {
		t.Fatal(err)
	}
	if err := d.parseMinFrequency(resp16(12000)); err != nil {
		t.Fatal(err)
	}

	// Below the minimum: warn but still encode the command.
	f := d.SetSpeedCommand(10000)
	pct := uint16(f.Payload[4])<<8 | uint16(f.Payload[5])
	if pct != 2500 {
		t.Fatalf("pct=%d, want 2500", pct)
	}
}

func TestBD600_InitializationSequence_Geometry(t *testing.T) {
	tests := []struct {
		index    int
		reg      byte
		rxLength byte
	}{
		{-1, 5, 6},
		{-2, 11, 6},
		{-3, 144, 6},
		{-4, 143, 5},
		{-5, 14, 6},
		{-6, 15, 6},
	}

	d := newTestBD600(t)

	for _, tt := range tests {
		f, parser, ok := d.InitializationSequence(tt.index)
		if !ok {
			t.Fatalf("step %d: unexpected sequence end", tt.index)
		}
		if parser == nil {
			t.Fatalf("step %d: nil parser", tt.index)
		}

		if f.Payload[1] != 0x01 || f.Payload[2] != 0x03 {
			t.Fatalf("step %d: header %#v", tt.index, f.Payload)
		}
		if f.Payload[3] != tt.reg {
			t.Fatalf("step %d: reg=%d, want %d", tt.index, f.Payload[3], tt.reg)
		}
		if f.RxLength != tt.rxLength {
			t.Fatalf("step %d: rx=%d, want %d", tt.index, f.RxLength, tt.rxLength)
		}
	}

	for _, index := range []int{0, 1, -7, -100} {
		if _, _, ok := d.InitializationSequence(index); ok {
			t.Fatalf("index %d: expected sequence end", index)
		}
	}
}

func TestBD600_Discovery_EndToEnd(t *testing.T) {
	d := newTestBD600(t)

	steps := []struct {
		index int
		resp  []byte
	}{
		{-1, resp16(40000)}, // max frequency
		{-2, resp16(12000)}, // min frequency
		{-3, resp16(3000)},  // rated RPM at 50Hz
		{-4, resp8(2)},      // poles
		{-5, resp16(50)},    // accel
		{-6, resp16(50)},    // decel
	}

	for _, s := range steps {
		_, parser, ok := d.InitializationSequence(s.index)
		if !ok {
			t.Fatalf("step %d: unexpected sequence end", s.index)
		}
		if err := parser(s.resp); err != nil {
			t.Fatalf("step %d: parser err=%v", s.index, err)
		}
	}

	p := d.Parameters()
	if p.MinFrequency != 12000 || p.MaxFrequency != 40000 {
		t.Fatalf("frequency range (%d,%d), want (12000,40000)", p.MinFrequency, p.MaxFrequency)
	}
	if p.MaxRPMAt50Hz != 3000 {
		t.Fatalf("rated rpm=%d, want 3000", p.MaxRPMAt50Hz)
	}
	if p.NumberPoles != 2 {
		t.Fatalf("poles=%d, want 2", p.NumberPoles)
	}
	if p.Slop != 1000 {
		t.Fatalf("slop=%d, want 1000", p.Slop)
	}

	speeds := d.Speeds()
	if speeds.MinRPM() != 7200 || speeds.MaxRPM() != 24000 {
		t.Fatalf("speed range (%d,%d), want (7200,24000)", speeds.MinRPM(), speeds.MaxRPM())
	}
}

func TestBD600_PoleCountValidation(t *testing.T) {
	for _, value := range []uint8{0, 1, 5, 255} {
		d := newTestBD600(t)
		if err := d.parsePoleCount(resp8(value)); err == nil {
			t.Fatalf("poles=%d: expected rejection", value)
		}
		if d.Parameters().NumberPoles != 4 {
			t.Fatalf("poles=%d: default overwritten to %d", value, d.Parameters().NumberPoles)
		}
	}

	for _, value := range []uint8{2, 3, 4} {
		d := newTestBD600(t)
		if err := d.parsePoleCount(resp8(value)); err != nil {
			t.Fatalf("poles=%d: unexpected err=%v", value, err)
		}
		if d.Parameters().NumberPoles != uint16(value) {
			t.Fatalf("poles=%d: stored %d", value, d.Parameters().NumberPoles)
		}
	}
}

func TestBD600_FrequencyInvariantRepair(t *testing.T) {
	d := newTestBD600(t)

	if err := d.parseMaxFrequency(resp16(100)); err != nil {
		t.Fatal(err)
	}
	if err := d.parseMinFrequency(resp16(40000)); err != nil {
		t.Fatal(err)
	}
	// Next calibration repairs the inverted range by clamping.
	if err := d.parseRatedRPM(resp16(3000)); err != nil {
		t.Fatal(err)
	}

	p := d.Parameters()
	if p.MinFrequency != p.MaxFrequency {
		t.Fatalf("range (%d,%d) not repaired", p.MinFrequency, p.MaxFrequency)
	}
	if p.MaxFrequency != 100 {
		t.Fatalf("max=%d, want 100", p.MaxFrequency)
	}
}

func TestBD600_SlopMonotonic(t *testing.T) {
	var prev uint32

	for maxFreq := uint32(100); maxFreq <= 4000; maxFreq += 100 {
		d := newTestBD600(t)
		if err := d.parseMaxFrequency(resp16(uint16(maxFreq))); err != nil {
			t.Fatal(err)
		}
		d.updateRPM()

		want := maxFreq / 40
		if want < 1 {
			want = 1
		}
		slop := d.Parameters().Slop
		if slop != want {
			t.Fatalf("maxFreq=%d: slop=%d, want %d", maxFreq, slop, want)
		}
		if slop < prev {
			t.Fatalf("maxFreq=%d: slop decreased %d -> %d", maxFreq, prev, slop)
		}
		prev = slop
	}
}

func TestBD600_StatusCursorWrap(t *testing.T) {
	d := newTestBD600(t)

	want := []byte{0, 1, 2, 3, 0, 1}
	for i, reg := range want {
		f, parser := d.StatusRequest()
		if f.Payload[1] != 0x04 {
			t.Fatalf("call %d: function %#x, want 0x04", i, f.Payload[1])
		}
		if f.Payload[3] != reg {
			t.Fatalf("call %d: reg=%d, want %d", i, f.Payload[3], reg)
		}
		// Telemetry only: any response body is accepted.
		if err := parser(resp16(0)); err != nil {
			t.Fatalf("call %d: parser err=%v", i, err)
		}
	}
}

func TestBD600_CurrentSpeed(t *testing.T) {
	d := newTestBD600(t)

	f, parser := d.CurrentSpeedRequest()
	if f.Payload[1] != 0x04 || f.Payload[3] != 0x01 {
		t.Fatalf("frame %#v, want output frequency read", f.Payload)
	}

	if err := parser(resp16(20000)); err != nil {
		t.Fatal(err)
	}
	if got := d.Speeds().Actual(); got != 20000 {
		t.Fatalf("actual=%d, want 20000", got)
	}
}

func TestRegistry(t *testing.T) {
	if !Registered("BD600") {
		t.Fatal("BD600 not registered")
	}

	if _, err := New("nope", discard()); err == nil {
		t.Fatal("expected error for unknown model")
	}

	d, err := New("BD600", discard())
	if err != nil {
		t.Fatalf("New(BD600) err=%v", err)
	}
	if _, ok := d.(*BD600); !ok {
		t.Fatalf("New(BD600) returned %T", d)
	}
}
