package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error taxonomy. Every failure is terminal for the current extraction
// attempt; none of them bring the process down.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrNormalization    = errors.New("normalization failed")
	ErrModelInvocation  = errors.New("model invocation failed")
	ErrResponseParse    = errors.New("response parse failed")
	ErrShapeValidation  = errors.New("shape validation failed")
)

// NewAppError builds an AppError with a stable code for logs and API bodies.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
