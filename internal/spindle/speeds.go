// internal/spindle/speeds.go
package spindle

// Entry is one point of the speed table: a spindle speed and the device
// speed that produces it.
type Entry struct {
	RPM      uint32
	Percent  uint32 // percent of the maximum device speed, x100
	DevSpeed uint32
}

// SpeedMap converts between spindle RPM and the driver's device speed unit.
// The RPM bounds are published once; the device-speed column is rescaled
// whenever the driver recalibrates.
type SpeedMap struct {
	entries []Entry
	minRPM  uint32
	maxRPM  uint32
	maxDev  uint32
	actual  uint32 // last device speed reported by the hardware
}

func NewSpeedMap() *SpeedMap {
	return &SpeedMap{}
}

func (m *SpeedMap) Empty() bool    { return len(m.entries) == 0 }
func (m *SpeedMap) MinRPM() uint32 { return m.minRPM }
func (m *SpeedMap) MaxRPM() uint32 { return m.maxRPM }

// ShelfSpeeds publishes the RPM bounds and builds the default linear table.
// It is a no-op once a table exists: later recalibrations may rescale device
// speeds but the published range stays put.
func (m *SpeedMap) ShelfSpeeds(minRPM, maxRPM uint32) {
	if !m.Empty() {
		return
	}
	if maxRPM < minRPM {
		maxRPM = minRPM
	}
	m.minRPM = minRPM
	m.maxRPM = maxRPM

	// Four linear shelves between the bounds.
	for i := uint32(0); i <= 4; i++ {
		rpm := minRPM + (maxRPM-minRPM)*i/4
		m.entries = append(m.entries, Entry{RPM: rpm, Percent: percentOf(rpm, maxRPM)})
	}
}

func percentOf(rpm, maxRPM uint32) uint32 {
	if maxRPM == 0 {
		return 0
	}
	return rpm * 10000 / maxRPM
}

// SetupSpeeds rescales the device-speed column so that the maximum RPM maps
// to maxDevSpeed.
func (m *SpeedMap) SetupSpeeds(maxDevSpeed uint32) {
	m.maxDev = maxDevSpeed
	for i := range m.entries {
		m.entries[i].DevSpeed = m.entries[i].Percent * maxDevSpeed / 10000
	}
}

// DevSpeed converts a requested RPM into the device speed unit. Zero stays
// zero; anything else is clamped into the published range.
func (m *SpeedMap) DevSpeed(rpm uint32) uint32 {
	if rpm == 0 || m.Empty() {
		return 0
	}
	if rpm < m.minRPM {
		rpm = m.minRPM
	}
	if rpm > m.maxRPM {
		rpm = m.maxRPM
	}

	prev := m.entries[0]
	if rpm <= prev.RPM {
		return prev.DevSpeed
	}
	for _, e := range m.entries[1:] {
		if rpm <= e.RPM {
			span := e.RPM - prev.RPM
			if span == 0 {
				return e.DevSpeed
			}
			return prev.DevSpeed + (e.DevSpeed-prev.DevSpeed)*(rpm-prev.RPM)/span
		}
		prev = e
	}
	return prev.DevSpeed
}

// RPM converts a device speed back into RPM.
func (m *SpeedMap) RPM(devSpeed uint32) uint32 {
	if devSpeed == 0 || m.Empty() || m.maxDev == 0 {
		return 0
	}
	if devSpeed >= m.maxDev {
		return m.maxRPM
	}
	return devSpeed * m.maxRPM / m.maxDev
}

// SetActual records the device speed last reported by the hardware.
func (m *SpeedMap) SetActual(devSpeed uint32) { m.actual = devSpeed }

// Actual returns the device speed last reported by the hardware.
func (m *SpeedMap) Actual() uint32 { return m.actual }

// AtSpeed reports whether the hardware has reached the target device speed
// within the given tolerance.
func (m *SpeedMap) AtSpeed(target, slop uint32) bool {
	if m.actual > target {
		return m.actual-target <= slop
	}
	return target-m.actual <= slop
}
