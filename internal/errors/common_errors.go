package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNumerical  ErrorType = "NUMERICAL"
	ErrTypeRender     ErrorType = "RENDER"
)

// ErrMissingColumns is the cause of every missing-column validation error.
var ErrMissingColumns = errors.New("missing required columns")

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNumericalError creates an error for a failed numerical routine
func NewNumericalError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNumerical, message, cause)
}

// NewRenderError creates an error for a chart or table that could not be drawn
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}

// NewMissingColumnsError reports the required columns absent from an input file.
// Column names are sorted so the message is stable.
func NewMissingColumnsError(missing []string) *AppError {
	cols := append([]string(nil), missing...)
	sort.Strings(cols)
	return NewAppError(ErrTypeValidation,
		fmt.Sprintf("input is missing required columns: %s", strings.Join(cols, ", ")),
		ErrMissingColumns,
	).WithContext("missing_columns", cols)
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// MissingColumns returns the column names carried by a missing-column error
func MissingColumns(err error) []string {
	var appErr *AppError
	if !errors.As(err, &appErr) || !errors.Is(appErr.Cause, ErrMissingColumns) {
		return nil
	}
	cols, _ := appErr.Context["missing_columns"].([]string)
	return cols
}
