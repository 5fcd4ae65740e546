package errors

import (
	"fmt"
)

// ErrorCode classifies a service failure so handlers can pick the right
// HTTP status without string matching.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the requested entity does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodePermissionDenied indicates the caller does not own the entity.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeRateLimitExceeded indicates the rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeGenerationFailed indicates the generation backend failed or timed out.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodePersistenceFailed indicates a database operation failed.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
)

// ServiceError is a structured error carrying a stable code.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NotFound creates a not found error.
func NotFound(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeNotFound, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidArgument, Message: msg}
}

// PermissionDenied creates a permission denied error.
func PermissionDenied(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodePermissionDenied, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// GenerationFailed wraps a generation backend failure.
func GenerationFailed(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeGenerationFailed, Message: msg, Cause: cause}
}

// PersistenceFailed wraps a database failure.
func PersistenceFailed(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodePersistenceFailed, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *ServiceError {
	return &ServiceError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	if serviceErr, ok := err.(*ServiceError); ok {
		return serviceErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ServiceError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if serviceErr, ok := err.(*ServiceError); ok {
		return serviceErr.Code
	}
	return defaultCode
}
