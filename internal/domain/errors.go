package domain

import (
	"fmt"
	"strings"
)

// The dispatch boundary distinguishes four per-call failure kinds. Each one
// carries enough context to diagnose the call without leaking credentials:
//
//   - UnknownToolError: the requested tool name is not in the registry.
//   - ValidationError: the argument bag violates the tool's schema.
//   - ConnectionError: the backend client could not be constructed.
//   - HTTPError: the backend reported an error status.
//
// ConfigError (config.go) is the fifth kind and is fatal at startup only.

// UnknownToolError reports a tool name with no registered descriptor.
type UnknownToolError struct {
	Tool string
}

// Error implements the error interface for UnknownToolError.
func (e *UnknownToolError) Error() string {
	return "unknown tool: " + e.Tool
}

// ValidationError reports an argument bag that violates a tool's schema.
// Detail names the offending argument and the constraint it broke.
type ValidationError struct {
	Detail string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return "invalid argument: " + e.Detail
}

// ConnectionError reports a failure to construct the backend client.
type ConnectionError struct {
	Err error
}

// Error implements the error interface for ConnectionError.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

// Unwrap exposes the underlying construction failure.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// HTTPError wraps an error status reported by an Atlassian API.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Message, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates an HTTPError for a backend-reported status.
func NewHTTPError(statusCode int, message, body string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, Body: body}
}

// Redactor returns a function that scrubs the given secrets from a message.
// Backend error bodies can echo credentials back (misconfigured proxies,
// auth debug pages); every failure text crosses a redactor before it is
// placed in the response envelope.
func Redactor(secrets ...string) func(string) string {
	return func(msg string) string {
		for _, secret := range secrets {
			if secret == "" {
				continue
			}
			msg = strings.ReplaceAll(msg, secret, "***")
		}
		return msg
	}
}
