// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultBaudRate       = 9600 // F13.01 setting on the inverter
	DefaultTimeoutMs      = 250
	DefaultPollIntervalMs = 250
	DefaultRetries        = 3
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	s := &cfg.Spindle

	if s.BaudRate == 0 {
		s.BaudRate = DefaultBaudRate
	}
	if s.TimeoutMs == 0 {
		s.TimeoutMs = DefaultTimeoutMs
	}
	if s.PollIntervalMs == 0 {
		s.PollIntervalMs = DefaultPollIntervalMs
	}
	if s.Retries == 0 {
		s.Retries = DefaultRetries
	}
}
