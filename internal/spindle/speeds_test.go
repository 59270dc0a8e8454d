// internal/spindle/speeds_test.go
package spindle

import "testing"

func calibrated() *SpeedMap {
	m := NewSpeedMap()
	m.ShelfSpeeds(7200, 24000)
	m.SetupSpeeds(40000)
	return m
}

func TestShelfSpeeds_PublishOnce(t *testing.T) {
	m := calibrated()

	// A second publication must not move the bounds.
	m.ShelfSpeeds(1, 2)

	if m.MinRPM() != 7200 || m.MaxRPM() != 24000 {
		t.Fatalf("bounds (%d,%d), want (7200,24000)", m.MinRPM(), m.MaxRPM())
	}
}

func TestDevSpeed(t *testing.T) {
	m := calibrated()

	tests := []struct {
		rpm  uint32
		want uint32
	}{
		{0, 0},          // off stays off
		{24000, 40000},  // max
		{12000, 20000},  // linear midpoint
		{100, 12000},    // clamped up to the minimum
		{99999, 40000},  // clamped down to the maximum
	}

	for _, tt := range tests {
		if got := m.DevSpeed(tt.rpm); got != tt.want {
			t.Fatalf("DevSpeed(%d)=%d, want %d", tt.rpm, got, tt.want)
		}
	}
}

func TestRPM_Inverse(t *testing.T) {
	m := calibrated()

	if got := m.RPM(40000); got != 24000 {
		t.Fatalf("RPM(40000)=%d, want 24000", got)
	}
	if got := m.RPM(20000); got != 12000 {
		t.Fatalf("RPM(20000)=%d, want 12000", got)
	}
	if got := m.RPM(0); got != 0 {
		t.Fatalf("RPM(0)=%d, want 0", got)
	}
}

func TestSetupSpeeds_Rescale(t *testing.T) {
	m := calibrated()
	m.SetupSpeeds(20000)

	if got := m.DevSpeed(24000); got != 20000 {
		t.Fatalf("DevSpeed(24000)=%d after rescale, want 20000", got)
	}
}

func TestAtSpeed(t *testing.T) {
	m := calibrated()

	m.SetActual(20000)

	tests := []struct {
		target uint32
		slop   uint32
		want   bool
	}{
		{20000, 0, true},
		{20999, 1000, true},
		{21000, 1000, true}, // boundary is inclusive
		{21001, 1000, false},
		{19000, 1000, true},
		{18999, 1000, false},
	}

	for _, tt := range tests {
		if got := m.AtSpeed(tt.target, tt.slop); got != tt.want {
			t.Fatalf("AtSpeed(%d, %d)=%v, want %v", tt.target, tt.slop, got, tt.want)
		}
	}
}

func TestEmptyMap(t *testing.T) {
	m := NewSpeedMap()

	if !m.Empty() {
		t.Fatal("new map should be empty")
	}
	if got := m.DevSpeed(10000); got != 0 {
		t.Fatalf("DevSpeed on empty map=%d, want 0", got)
	}
	if got := m.RPM(10000); got != 0 {
		t.Fatalf("RPM on empty map=%d, want 0", got)
	}
}
