package formwizard

import "fmt"

// ConfigError reports a definition that cannot be loaded or cannot drive a wizard
// (missing first step, duplicate keys, unreadable source).
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid wizard configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid wizard configuration (%s): %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
