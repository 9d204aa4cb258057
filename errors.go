// Package stream structured error types for better error handling
package stream

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Configuration errors
	ErrTypeConfig ErrorType = iota
	// Resource errors (devices, mappings, files)
	ErrTypeResource
	// Validation errors
	ErrTypeValidation
	// Measurement errors
	ErrTypeMeasurement
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Op      string      // Operation that failed
	Message string      // Human-readable message
	Err     error       // Underlying error if any
	Context interface{} // Additional context
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stream %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("stream %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConfig:
		return "Config"
	case ErrTypeResource:
		return "Resource"
	case ErrTypeValidation:
		return "Validation"
	case ErrTypeMeasurement:
		return "Measurement"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewConfigError creates a configuration error
func NewConfigError(op string, message string) error {
	return &Error{
		Type:    ErrTypeConfig,
		Op:      op,
		Message: message,
	}
}

// NewResourceError creates a resource error
func NewResourceError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeResource,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(op string, message string, context interface{}) error {
	return &Error{
		Type:    ErrTypeValidation,
		Op:      op,
		Message: message,
		Context: context,
	}
}

// NewMeasurementError creates a measurement error
func NewMeasurementError(op string, message string) error {
	return &Error{
		Type:    ErrTypeMeasurement,
		Op:      op,
		Message: message,
	}
}

// Common pre-defined errors

var (
	// ErrAlreadyReleased indicates the backing arrays were released twice
	ErrAlreadyReleased = NewResourceError("Release", "arrays already released", nil)

	// ErrZeroFrequency indicates a cycle counter calibrated to no movement
	ErrZeroFrequency = NewMeasurementError("Calibrate", "cycle counter did not advance")
)

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return isType(err, ErrTypeConfig)
}

// IsResourceError checks if an error is a resource error
func IsResourceError(err error) bool {
	return isType(err, ErrTypeResource)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrTypeValidation)
}

// IsMeasurementError checks if an error is a measurement error
func IsMeasurementError(err error) bool {
	return isType(err, ErrTypeMeasurement)
}

func isType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}
