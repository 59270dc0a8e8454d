// internal/transport/session.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mdouchement/logger"

	"github.com/snoozemoose/spindled/internal/spindle"
	"github.com/snoozemoose/spindled/internal/vfd"
)

// RoundTripper is the request/response contract the session drives.
type RoundTripper interface {
	RoundTrip(vfd.Frame) ([]byte, error)
}

// Command is one user request: rotation state plus target RPM.
type Command struct {
	State spindle.State
	RPM   uint32
}

// Session owns the request/response schedule for one device: the discovery
// sequence at startup, then user commands interleaved with idle telemetry
// polling. Exactly one request is outstanding at any time; everything runs
// on the Run goroutine.
type Session struct {
	rt       RoundTripper
	drv      vfd.Driver
	log      logger.Logger
	interval time.Duration
	retries  int

	commands chan Command

	// Run-goroutine state.
	state        spindle.State
	lastDevSpeed uint32
	pollSpeed    bool
	atSpeed      bool
}

// NewSession creates a session with immutable config.
func NewSession(rt RoundTripper, drv vfd.Driver, log logger.Logger, interval time.Duration, retries int) (*Session, error) {
	if rt == nil {
		return nil, errors.New("transport: round tripper required")
	}
	if drv == nil {
		return nil, errors.New("transport: driver required")
	}
	if interval <= 0 {
		return nil, errors.New("transport: poll interval must be > 0")
	}
	if retries < 0 {
		return nil, errors.New("transport: retries must be >= 0")
	}
	return &Session{
		rt:       rt,
		drv:      drv,
		log:      log,
		interval: interval,
		retries:  retries,
		commands: make(chan Command),
	}, nil
}

// SetState requests a rotation state and target RPM. It blocks until the
// session picks the command up.
func (s *Session) SetState(state spindle.State, rpm uint32) {
	s.commands <- Command{State: state, RPM: rpm}
}

// Discover runs the startup parameter reads, one step per round trip,
// until the driver's sequence is exhausted.
func (s *Session) Discover() error {
	for index := -1; ; index-- {
		frame, parser, ok := s.drv.InitializationSequence(index)
		if !ok {
			return nil
		}
		if err := s.execute(frame, parser); err != nil {
			return fmt.Errorf("transport: discovery step %d: %w", index, err)
		}
	}
}

// Run drives the session until the context is cancelled or a request
// exhausts its retries. A retry-exhausted error is the alarm condition:
// the caller must treat the spindle state as unknown.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Discover(); err != nil {
		return err
	}

	speeds := s.drv.Speeds()
	s.log.Infof("spindle ready: %d-%d RPM", speeds.MinRPM(), speeds.MaxRPM())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Best-effort stop on the way out.
			frame := s.drv.DirectionCommand(spindle.Disable)
			if _, err := s.rt.RoundTrip(frame); err != nil {
				s.log.WithError(err).Warn("Could not stop spindle on shutdown")
			}
			return nil

		case cmd := <-s.commands:
			if err := s.apply(cmd); err != nil {
				return err
			}

		case <-ticker.C:
			if err := s.poll(); err != nil {
				return fmt.Errorf("transport: poll: %w", err)
			}
		}
	}
}

// apply sends the direction frame when the state changes and the setpoint
// frame unless the device-speed delta is below the driver's slop.
func (s *Session) apply(cmd Command) error {
	changed := cmd.State != s.state

	if changed {
		if err := s.execute(s.drv.DirectionCommand(cmd.State), nil); err != nil {
			return fmt.Errorf("transport: direction command: %w", err)
		}
		s.state = cmd.State
	}

	var devSpeed uint32
	if cmd.State != spindle.Disable {
		devSpeed = s.drv.Speeds().DevSpeed(cmd.RPM)
	}

	if !changed && delta(devSpeed, s.lastDevSpeed) < s.drv.Parameters().Slop {
		return nil
	}

	if err := s.execute(s.drv.SetSpeedCommand(devSpeed), nil); err != nil {
		return fmt.Errorf("transport: speed command: %w", err)
	}
	s.lastDevSpeed = devSpeed
	s.atSpeed = false
	return nil
}

// poll alternates the dedicated current-speed read with the cyclic status
// reads.
func (s *Session) poll() error {
	var frame vfd.Frame
	var parser vfd.ResponseParser

	s.pollSpeed = !s.pollSpeed
	if s.pollSpeed {
		frame, parser = s.drv.CurrentSpeedRequest()
	} else {
		frame, parser = s.drv.StatusRequest()
	}

	if err := s.execute(frame, parser); err != nil {
		return err
	}

	if s.pollSpeed && s.lastDevSpeed != 0 && !s.atSpeed {
		if s.drv.Speeds().AtSpeed(s.lastDevSpeed, s.drv.Parameters().Slop) {
			s.atSpeed = true
			s.log.Infof("spindle at speed: %d RPM", s.drv.Speeds().RPM(s.drv.Speeds().Actual()))
		}
	}
	return nil
}

// execute performs one round trip with retries. Both transport failures and
// parser rejections are retried; the last error wins.
func (s *Session) execute(frame vfd.Frame, parser vfd.ResponseParser) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		var resp []byte
		resp, err = s.rt.RoundTrip(frame)
		if err != nil {
			continue
		}
		if parser == nil {
			return nil
		}
		if err = parser(resp); err != nil {
			continue
		}
		return nil
	}
	return err
}

func delta(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
