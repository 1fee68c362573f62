// Package errors provides unified error handling across the book editor.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the foundation for error handling across every layer (models,
// storage, service, CLI, TUI). It standardizes how failures are represented so
// that callers can tell a caller bug from an environmental failure.
//
// KEY RESPONSIBILITIES:
// - Define standardized error codes and categories
// - Provide a structured error type (AppError) with severity and context
// - Separate contract violations (INVALID_ARGUMENT, INVALID_STATE, VALIDATION_ERROR)
//   from environmental failures (FILE_NOT_FOUND, FILE_CORRUPTED, STORAGE_FAILURE)
//
// INTEGRATION POINTS:
// - internal/models: Template and Document return AppErrors for contract violations
// - internal/storage: BlobStore implementations wrap I/O failures as AppErrors
// - internal/service: managers log environmental AppErrors and report absence instead
// - internal/cli: CLIErrorHandler formats AppErrors for terminal display
// - internal/ui: TUIErrorHandler colours the status line by severity
//
// USAGE PATTERNS:
// - Create errors: InvalidArgumentError(), InvalidStateError(), ValidationError()
// - Wrap errors: Wrap() to add a code to an existing error
// - Check codes: HasCode() walks wrapped chains, GetAppError() converts anything
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Contract violations
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrCodeInvalidState    ErrorCode = "INVALID_STATE"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidFormat   ErrorCode = "INVALID_FORMAT"

	// Service errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"

	// Resource errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Storage errors
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
	ErrCodeFileNotFound   ErrorCode = "FILE_NOT_FOUND"
	ErrCodeFileCorrupted  ErrorCode = "FILE_CORRUPTED"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryState      ErrorCategory = "state"
	CategoryService    ErrorCategory = "service"
	CategoryStorage    ErrorCategory = "storage"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   string        `json:"details,omitempty"`
	Severity  ErrorSeverity `json:"severity"`
	Category  ErrorCategory `json:"category"`
	Cause     error         `json:"-"`
	Timestamp time.Time     `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsContractViolation reports whether the error signals a caller bug rather
// than an environmental failure.
func (e *AppError) IsContractViolation() bool {
	switch e.Code {
	case ErrCodeInvalidArgument, ErrCodeInvalidState, ErrCodeValidation, ErrCodeInvalidFormat:
		return true
	default:
		return false
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

// categorizeError determines the category and severity based on error code
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeInvalidArgument, ErrCodeValidation, ErrCodeInvalidFormat:
		return CategoryValidation, SeverityWarning
	case ErrCodeInvalidState:
		return CategoryState, SeverityError

	case ErrCodeInternalError:
		return CategoryService, SeverityCritical

	case ErrCodeNotFound:
		return CategoryService, SeverityInfo
	case ErrCodeAlreadyExists:
		return CategoryService, SeverityWarning

	case ErrCodeStorageFailure, ErrCodeFileCorrupted:
		return CategoryStorage, SeverityError
	case ErrCodeFileNotFound:
		return CategoryStorage, SeverityInfo

	default:
		return CategorySystem, SeverityError
	}
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Common error constructors for frequently used errors

func InvalidArgumentError(format string, args ...interface{}) *AppError {
	return NewAppError(ErrCodeInvalidArgument, fmt.Sprintf(format, args...))
}

func InvalidStateError(format string, args ...interface{}) *AppError {
	return NewAppError(ErrCodeInvalidState, fmt.Sprintf(format, args...))
}

func ValidationError(format string, args ...interface{}) *AppError {
	return NewAppError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func AlreadyExistsError(resource string) *AppError {
	return NewAppError(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("Storage operation failed: %s", operation))
}

func FileNotFoundError(name string, err error) *AppError {
	return Wrap(err, ErrCodeFileNotFound, fmt.Sprintf("File not found: %s", name))
}

func FileCorruptedError(name string, err error) *AppError {
	return Wrap(err, ErrCodeFileCorrupted, fmt.Sprintf("File is malformed: %s", name))
}
