package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input, caught before invocation
	ErrCatExecution  ErrorCategory = "execution"  // Subprocess runtime failure
	ErrCatTimeout    ErrorCategory = "timeout"    // Wall-clock deadline reached
	ErrCatRateLimit  ErrorCategory = "rate_limit" // Tool reported rate limiting
	ErrCatParse      ErrorCategory = "parse"      // Output could not be interpreted
	ErrCatNotFound   ErrorCategory = "not_found"  // Executable or resource missing
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// Error codes for the failure taxonomy.
const (
	CodeExecutableNotFound = "EXECUTABLE_NOT_FOUND"
	CodeTimeout            = "TIMEOUT"
	CodeLaunchFailed       = "LAUNCH_FAILED"
	CodeNonZeroExit        = "NON_ZERO_EXIT"
	CodeEmptyOutput        = "EMPTY_OUTPUT"
	CodeReportedError      = "REPORTED_ERROR"
	CodeTruncatedOutput    = "TRUNCATED_OUTPUT"
	CodeMalformedJSON      = "MALFORMED_JSON"
	CodeNotJSON            = "NOT_JSON"
	CodeSchemaMissing      = "SCHEMA_MISSING"
	CodeEmptyPrompt        = "EMPTY_PROMPT"
	CodeNoPath             = "NO_PATH"
	CodeCancelled          = "CANCELLED"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodePreflightFailed    = "PREFLIGHT_FAILED"
	CodeRateLimited        = "RATE_LIMITED"
)

// MaxPromptLength is the soft prompt-size threshold. Exceeding it only
// produces a warning; it never rejects a call.
const MaxPromptLength = 100000

// DomainError represents a structured error from the adapter.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]any
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Detail returns a detail value by key, or nil.
func (e *DomainError) Detail(key string) any {
	if e.Details == nil {
		return nil
	}
	return e.Details[key]
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrExecution creates an execution error.
func ErrExecution(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatExecution,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrTimeout creates a timeout error.
func ErrTimeout(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      CodeTimeout,
		Message:   message,
		Retryable: true,
	}
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatRateLimit,
		Code:      CodeRateLimited,
		Message:   message,
		Retryable: true,
	}
}

// ErrParse creates a parse error for output that could not be interpreted.
func ErrParse(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatParse,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatNotFound,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// IsCode checks if an error carries the given code.
func IsCode(err error, code string) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == code
	}
	return false
}
