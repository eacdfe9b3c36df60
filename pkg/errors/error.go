// Package errors provides coded errors for the dashboard backend.
//
// Error codes are grouped by range:
//   - General errors (1-99)
//   - Validation errors (100-199): bad parameters, unknown selectors, type mismatches
//   - Data errors (200-299): empty datasets, unreadable files, query failures
//   - Indicator errors (300-399): registry lookups and indicator configuration
//   - Config errors (400-499): config file loading, validation and versioning
//   - Market data errors (700-799): remote fetches, parsing and parquet export
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeUnknownField, "unknown feature field %q", key)
//	err = errors.Wrap(errors.ErrCodeDataLoadFailed, "failed to read csv", cause)
//	if errors.HasCode(err, errors.ErrCodeUnknownField) { ... }
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error is an error carrying an ErrorCode.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps cause with a code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps cause with a code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// MarshalJSON renders the error as {"code":..,"message":..} for API responses.
// The cause is folded into the message.
func (e *Error) MarshalJSON() ([]byte, error) {
	message := e.Message
	if e.Cause != nil {
		message = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return json.Marshal(struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	}{
		Code:    e.Code,
		Message: message,
	})
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from err, or ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError is returned when a source yields fewer bars than required.
type InsufficientDataError struct {
	Required int
	Actual   int
	Source   string
	Message  string
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, source, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Source:   source,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks the chain of err for an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
