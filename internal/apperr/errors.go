package apperr

import "errors"

// ConfigError marks a problem with the run setup (missing credential,
// unreadable query file, invalid flag) that must stop the benchmark
// before any query is sent.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfig(msg string) *ConfigError {
	return &ConfigError{Message: msg}
}

func NewConfigWrap(msg string, err error) *ConfigError {
	return &ConfigError{Message: msg, Err: err}
}

// IsConfig reports whether err carries a ConfigError anywhere in its chain.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
