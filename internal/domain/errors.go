package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("gift not found")
	ErrAlreadyClaimed       = errors.New("gift already claimed")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// ValidationError reports guest or admin input rejected before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RemoteError reports a failed catalogue store call.
// Local state is left exactly as it was before the call.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("catalogue store %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ConfigurationError lists the store settings missing at startup.
// It is reported to the operator log only.
type ConfigurationError struct {
	Driver  string
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s store not configured, missing %s", e.Driver, strings.Join(e.Missing, ", "))
}
