package session

import (
	"errors"
	"fmt"
)

// Error represents a failed session-scoped call.
//
// Session errors include:
//   - No session: access outside an active session binding
//   - Preset not found: ApplyPreset with an id the configuration lacks
//   - Invalid config: Bind without a usable configuration
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ComponentID identifies the affected component, if any.
	ComponentID string
}

// ErrorCode categorizes session errors.
type ErrorCode string

const (
	// ErrCodeNoSession indicates access outside an active session.
	ErrCodeNoSession ErrorCode = "NO_SESSION"

	// ErrCodePresetNotFound indicates an unknown preset id.
	ErrCodePresetNotFound ErrorCode = "PRESET_NOT_FOUND"

	// ErrCodeInvalidConfig indicates a nil configuration or one without an id.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// ErrNoSession matches any NO_SESSION error with errors.Is.
var ErrNoSession = &Error{Code: ErrCodeNoSession, Message: "must be used within a session"}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ComponentID != "" {
		return fmt.Sprintf("%s: %s (component=%s)", e.Code, e.Message, e.ComponentID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a session Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// IsNoSession returns true if err is a NO_SESSION error.
// Uses errors.As to handle wrapped errors.
func IsNoSession(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeNoSession
	}
	return false
}

// IsPresetNotFound returns true if err is a PRESET_NOT_FOUND error.
func IsPresetNotFound(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodePresetNotFound
	}
	return false
}

func noSession(where string) *Error {
	return &Error{Code: ErrCodeNoSession, Message: where + " must be used within a session"}
}
