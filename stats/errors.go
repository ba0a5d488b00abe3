package stats

import "fmt"

// ConfigError reports malformed or missing phase statistics. It is fatal
// and always raised before any sampling begins.
type ConfigError struct {
	Phase string // phase name, empty for domain errors.
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Phase == "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Err)
	}
	return fmt.Sprintf("config: phase %q: %s: %s", e.Phase, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func phaseErr(phase, field, format string, args ...interface{}) error {
	return &ConfigError{Phase: phase, Field: field, Err: fmt.Errorf(format, args...)}
}
