package models

import "fmt"

// ConfigError reports bad or missing league data at season initialization.
// It is fatal: no partially-initialized season is ever returned alongside it.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid league data: " + e.Reason
}

// NotFoundError reports an unknown team, player or fixture id. It is returned
// as a failure value through the public API, never panicked.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
