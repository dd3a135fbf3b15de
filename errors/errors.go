// Package errors provides error classification for multilang components.
// Errors are classified so the runtime can decide whether to log and keep
// reading or to stop the component.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents errors that do not stop the component
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input from the parent or the application
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop the component
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for protocol conditions
var (
	ErrInvalidTuple   = errors.New("tuple values are not an array")
	ErrInvalidTaskIDs = errors.New("task id list is not an array of integers")
	ErrMalformedFrame = errors.New("frame body is not valid json")
	ErrWrongMode      = errors.New("emit option not supported by this component kind")
	ErrMissingSetup   = errors.New("setup message missing or empty")
	ErrCallbackPanic  = errors.New("component callback panicked")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsFatal checks if an error is fatal and should stop the component
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrInvalidTuple) || errors.Is(err, ErrCallbackPanic)
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrMalformedFrame) ||
		errors.Is(err, ErrInvalidTaskIDs) ||
		errors.Is(err, ErrWrongMode)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	switch {
	case IsFatal(err):
		return ErrorFatal
	case IsInvalid(err):
		return ErrorInvalid
	default:
		return ErrorTransient
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class:     ErrorFatal,
		Err:       wrappedErr,
		Message:   wrappedErr.Error(),
		Component: component,
		Operation: method,
	}
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class:     ErrorInvalid,
		Err:       wrappedErr,
		Message:   wrappedErr.Error(),
		Component: component,
		Operation: method,
	}
}
