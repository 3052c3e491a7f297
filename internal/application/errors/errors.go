// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
)

// ValidationError indicates a manifest or request failed validation.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// ModelError indicates a manifest was well-formed but describes an invalid
// model, e.g. a duplicate subsystem or an illegal re-allocation.
type ModelError struct {
	Cause error
	Path  string
	Model string
}

func (e *ModelError) Error() string {
	name := e.Model
	if name == "" {
		name = e.Path
	}
	return fmt.Sprintf("invalid model %s: %v", name, e.Cause)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// NewModelError creates a new model error.
func NewModelError(path, model string, cause error) *ModelError {
	return &ModelError{
		Path:  path,
		Model: model,
		Cause: cause,
	}
}

// ConfigurationError indicates a runtime config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
