package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies pipeline errors. Every error produced by the loader,
// engine, fetch driver, or renderers carries exactly one type; all of them
// are terminal for the current report attempt and nothing retries internally.
type ErrorType string

const (
	ErrTypeMalformedInput ErrorType = "MALFORMED_INPUT"
	ErrTypeEmptyData      ErrorType = "EMPTY_DATA"
	ErrTypeMissingColumn  ErrorType = "MISSING_COLUMN"
	ErrTypeFetch          ErrorType = "FETCH"
	ErrTypeRender         ErrorType = "RENDER"
	ErrTypeConfig         ErrorType = "CONFIG"
	ErrTypeStorage        ErrorType = "STORAGE"
)

// AppError is the application error type. Context carries structured detail
// (for example the missing column name) for logging at the call site.
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

// NewMalformedInputError reports an input file that is unreadable or not
// parseable as delimited tabular data.
func NewMalformedInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeMalformedInput, message, cause)
}

// NewEmptyDataError reports a run table with zero records.
func NewEmptyDataError(message string) *AppError {
	return NewAppError(ErrTypeEmptyData, message, nil)
}

// NewMissingColumnError reports a required column absent from the input.
// The column name is part of both the message and the error context.
func NewMissingColumnError(column string) *AppError {
	return NewAppError(ErrTypeMissingColumn, fmt.Sprintf("missing required column: %s", column), nil).
		WithContext("column", column)
}

// NewFetchError reports a session/export driver failure.
func NewFetchError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFetch, message, cause)
}

// NewRenderError reports a document renderer failure.
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewStorageError creates a filesystem error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// isType reports whether err or anything it wraps is an AppError of the
// given type.
func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsMalformedInput reports whether err is a malformed-input error.
func IsMalformedInput(err error) bool { return isType(err, ErrTypeMalformedInput) }

// IsEmptyData reports whether err is an empty-data error.
func IsEmptyData(err error) bool { return isType(err, ErrTypeEmptyData) }

// IsMissingColumn reports whether err is a missing-column error.
func IsMissingColumn(err error) bool { return isType(err, ErrTypeMissingColumn) }

// IsFetch reports whether err is a fetch-driver error.
func IsFetch(err error) bool { return isType(err, ErrTypeFetch) }

// IsRender reports whether err is a renderer error.
func IsRender(err error) bool { return isType(err, ErrTypeRender) }

// MissingColumn returns the column name recorded on a missing-column error,
// or "" if err is not one.
func MissingColumn(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Type == ErrTypeMissingColumn {
		if col, ok := appErr.Context["column"].(string); ok {
			return col
		}
	}
	return ""
}
