// Package errors provides standardized error handling for the search API.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDataAccessFailed         ErrorCode = "DATA_ACCESS_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeRateLimited     ErrorCode = "RATE_LIMITED"
	ErrCodeRegistryInvalid ErrorCode = "REGISTRY_INVALID"
	ErrCodeMigrationFailed ErrorCode = "MIGRATION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying driver or I/O error.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewDataAccessError wraps a failed statement execution or row scan.
func NewDataAccessError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataAccessFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     context.DeadlineExceeded,
	}
}

func NewRateLimitedError(client string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Rate limit exceeded. Please try again later.",
		Details:   fmt.Sprintf("client: %s", client),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryInvalidError reports a county registry file that failed schema validation.
func NewRegistryInvalidError(path string, problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryInvalid,
		Message:   "County registry failed validation",
		Details:   fmt.Sprintf("path: %s, problems: %s", path, strings.Join(problems, "; ")),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMigrationFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMigrationFailed,
		Message:   "Migration failed",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// HTTPStatus maps an error code to the response status returned by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewQueryTimeoutError("unknown")
	}
	return NewInternalError(err)
}

// HasCode reports whether err is a StandardError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATA") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "RATE"):
		return "TRAFFIC"
	case strings.Contains(codeStr, "REGISTRY") || strings.Contains(codeStr, "MIGRATION"):
		return "OPERATIONS"
	default:
		return "OTHER"
	}
}
