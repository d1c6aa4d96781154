package upstream

import "fmt"

// ConfigError represents an upstream client configuration problem, such as a
// missing API key. It is reported before any upstream contact is made.
type ConfigError struct {
	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("upstream configuration error for field %q: %s", e.Field, e.Message)
}

// RejectionError represents a non-success status from the upstream endpoint.
// The message is the best-effort decoded error payload.
type RejectionError struct {
	// StatusCode is the HTTP status returned by the upstream
	StatusCode int

	// Message is the decoded error message, or a generic fallback
	Message string
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	return fmt.Sprintf("upstream rejected request (status %d): %s", e.StatusCode, e.Message)
}
