// internal/vfd/bd600.go
//
// Driver for the Folinn BD600 frequency inverter. The protocol is a Modbus
// RTU dialect: register writes are standard function 0x06 frames, but reads
// use [func 0x01/0x04, 0x03, reg, 0x00, 0x00] and answer with the value at
// offsets 4-5 (or offset 4 alone for single-byte registers).
//
// The inverter must be configured for RS485 control before use:
//
//	F00.01 -> 2   RS485 command source
//	F00.06 -> 9   frequency A source to RS485
//	F13.00 -> 1   local address
//	F13.01 -> 5   9600 baud
//	F13.02 -> 3   8N1
//	F13.05 -> 1   standard Modbus protocol
package vfd

import (
	"fmt"

	"github.com/mdouchement/logger"

	"github.com/snoozemoose/spindled/internal/spindle"
)

// BD600 registers.
const (
	bd600RegControl      = 0x1000 // run/stop/direction
	bd600RegFrequencySet = 0x3000 // setpoint, percent of max frequency x100

	bd600RegMaxFrequency = 5   // F00.03, centiHz
	bd600RegMinFrequency = 11  // F00.05, centiHz
	bd600RegAcceleration = 14  // x0.1 s
	bd600RegDeceleration = 15  // x0.1 s
	bd600RegPoleCount    = 143 // single byte
	bd600RegRatedRPM     = 144 // motor revolution at 50Hz
)

// Control codes for bd600RegControl.
const (
	bd600RunForward = 1
	bd600RunReverse = 2
	bd600Stop       = 5
)

// BD600 adapts the spindle abstraction to the BD600 inverter.
// Mutated only from response parsers, which the transport invokes one at a
// time; no locking needed.
type BD600 struct {
	log    logger.Logger
	speeds *spindle.SpeedMap
	params Parameters

	// status-poll cursor, wraps over registers 0-3
	statusReg byte
}

func init() {
	register("BD600", newBD600)
}

func newBD600(log logger.Logger) Driver {
	return &BD600{
		log:    log,
		speeds: spindle.NewSpeedMap(),
		params: Parameters{
			// Conservative defaults until discovery overwrites them.
			MinFrequency: 100,
			MaxFrequency: 400,
			NumberPoles:  4,
			NumberPhases: 3,
		},
	}
}

func (d *BD600) Parameters() Parameters    { return d.params }
func (d *BD600) Speeds() *spindle.SpeedMap { return d.speeds }

// DirectionCommand builds the run/stop frame. Anything that is not Cw or
// Ccw stops the spindle.
func (d *BD600) DirectionCommand(state spindle.State) Frame {
	var code uint16
	switch state {
	case spindle.Cw:
		code = bd600RunForward
	case spindle.Ccw:
		code = bd600RunReverse
	default:
		code = bd600Stop
	}
	return WriteRegister(bd600RegControl, code)
}

// SetSpeedCommand builds the setpoint frame. The inverter expects the target
// as a percentage of the configured maximum frequency, scaled by 100 for two
// decimal places. A target outside the discovered range is logged but still
// sent; the inverter enforces its own limits.
func (d *BD600) SetSpeedCommand(devSpeed uint32) Frame {
	if devSpeed != 0 && (devSpeed < d.params.MinFrequency || devSpeed > d.params.MaxFrequency) {
		d.log.Warnf("BD600 requested freq %d is outside of range (%d,%d)",
			devSpeed, d.params.MinFrequency, d.params.MaxFrequency)
	}

	percentage := devSpeed * 10000 / d.params.MaxFrequency

	return WriteRegister(bd600RegFrequencySet, uint16(percentage))
}

// InitializationSequence returns the discovery read for the given step.
// Steps are indexed -1 downwards; any other index ends the sequence.
func (d *BD600) InitializationSequence(index int) (Frame, ResponseParser, bool) {
	switch index {
	case -1:
		return ReadParameter(bd600RegMaxFrequency), d.parseMaxFrequency, true
	case -2:
		return ReadParameter(bd600RegMinFrequency), d.parseMinFrequency, true
	case -3:
		return ReadParameter(bd600RegRatedRPM), d.parseRatedRPM, true
	case -4:
		return ReadParameter8(bd600RegPoleCount), d.parsePoleCount, true
	case -5:
		return ReadParameter(bd600RegAcceleration), d.parseAcceleration, true
	case -6:
		return ReadParameter(bd600RegDeceleration), d.parseDeceleration, true
	default:
		return Frame{}, nil, false
	}
}

func (d *BD600) parseMaxFrequency(resp []byte) error {
	d.params.MaxFrequency = uint32(Value16(resp))
	return nil
}

func (d *BD600) parseMinFrequency(resp []byte) error {
	d.params.MinFrequency = uint32(Value16(resp))

	d.log.Infof("BD600 freq range (%d,%d) Hz (%d,%d) RPM",
		d.params.MinFrequency/100, d.params.MaxFrequency/100,
		d.params.MinFrequency/100*60, d.params.MaxFrequency/100*60)

	return nil
}

func (d *BD600) parseRatedRPM(resp []byte) error {
	d.params.MaxRPMAt50Hz = uint32(Value16(resp))
	d.log.Infof("BD600 rated RPM @ 50Hz: %d", d.params.MaxRPMAt50Hz)

	d.updateRPM()
	return nil
}

func (d *BD600) parsePoleCount(resp []byte) error {
	value := Value8(resp)
	if value < 2 || value > 4 {
		return fmt.Errorf("bd600: pole count: expected 2-4, got %d", value)
	}

	d.params.NumberPoles = uint16(value)
	d.log.Infof("BD600 poles: %d", d.params.NumberPoles)

	d.updateRPM()
	return nil
}

func (d *BD600) parseAcceleration(resp []byte) error {
	d.log.Infof("BD600 accel: %.1fs", float64(Value16(resp))/10)
	return nil
}

func (d *BD600) parseDeceleration(resp []byte) error {
	d.log.Infof("BD600 decel: %.1fs", float64(Value16(resp))/10)
	return nil
}

// updateRPM recalibrates the speed table from the discovered frequency
// bounds. The RPM range is published once; later calls only rescale the
// table and the slop tolerance against the current maximum frequency.
func (d *BD600) updateRPM() {
	if d.params.MinFrequency > d.params.MaxFrequency {
		d.params.MinFrequency = d.params.MaxFrequency
	}

	if d.speeds.Empty() {
		// centiHz (the divisor of 100) to RPM (the factor of 60).
		minRPM := d.params.MinFrequency * 60 / 100
		maxRPM := d.params.MaxFrequency * 60 / 100
		d.speeds.ShelfSpeeds(minRPM, maxRPM)
	}
	d.speeds.SetupSpeeds(d.params.MaxFrequency)

	d.params.Slop = d.params.MaxFrequency / 40
	if d.params.Slop < 1 {
		d.params.Slop = 1
	}
}

// StatusRequest returns the next telemetry read, cycling over status
// registers 0-3 (set frequency, output frequency, output current, RPM).
// Pure telemetry: the response is accepted without inspection.
func (d *BD600) StatusRequest() (Frame, ResponseParser) {
	frame := ReadStatus(d.statusReg)

	if d.statusReg < 0x03 {
		d.statusReg++
	} else {
		d.statusReg = 0x00
	}

	return frame, d.parseStatus
}

func (d *BD600) parseStatus(resp []byte) error {
	return nil
}

// CurrentSpeedRequest reads the output frequency and records it for speed
// synchronization.
func (d *BD600) CurrentSpeedRequest() (Frame, ResponseParser) {
	return ReadStatus(0x01), d.parseCurrentSpeed
}

func (d *BD600) parseCurrentSpeed(resp []byte) error {
	d.speeds.SetActual(uint32(Value16(resp)))
	return nil
}
