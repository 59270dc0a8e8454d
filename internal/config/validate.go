// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/snoozemoose/spindled/internal/vfd"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	s := cfg.Spindle

	if s.Model == "" {
		return fmt.Errorf("spindle: model is required (known: %v)", vfd.Models())
	}
	if !vfd.Registered(s.Model) {
		return fmt.Errorf("spindle: unknown model %q (known: %v)", s.Model, vfd.Models())
	}

	if s.Port == "" {
		return fmt.Errorf("spindle: port is required")
	}

	if s.Address == 0 || s.Address > 247 {
		return fmt.Errorf("spindle: address %d out of range (1-247)", s.Address)
	}

	if s.BaudRate < 0 {
		return fmt.Errorf("spindle: baud_rate must be >= 0")
	}
	if s.TimeoutMs < 0 {
		return fmt.Errorf("spindle: timeout_ms must be >= 0")
	}
	if s.PollIntervalMs < 0 {
		return fmt.Errorf("spindle: poll_interval_ms must be >= 0")
	}
	if s.Retries < 0 {
		return fmt.Errorf("spindle: retries must be >= 0")
	}

	return nil
}
