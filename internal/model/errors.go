package model

import "fmt"

// ConfigError reports a malformed decision request: a missing identity field
// or an unrecognized policy tier. It is the only failure kind that propagates
// past the engine's public boundary; advisor failures never do.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Detail)
}
