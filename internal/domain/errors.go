package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies failures crossing the service boundary.
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION"
	CodeForbidden  ErrorCode = "FORBIDDEN"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeConflict   ErrorCode = "CONFLICT"
	CodeInternal   ErrorCode = "INTERNAL"
)

// FieldError carries a validation message for a single filter or form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the classified error type surfaced by services and mapped to
// transport status codes at the API boundary. Storage-layer errors are
// wrapped, never exposed raw.
type Error struct {
	Code    ErrorCode
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(fields ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// NewForbiddenError reports a denied permission check. The message is
// deliberately uniform so callers cannot distinguish a missing grant from a
// tenant mismatch.
func NewForbiddenError() *Error {
	return &Error{Code: CodeForbidden, Message: "not permitted"}
}

// NewNotFoundError reports an absent entity or relation.
func NewNotFoundError(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// NewConflictError reports a cascade or commit failure that rolled the batch back.
func NewConflictError(message string, cause error) *Error {
	return &Error{Code: CodeConflict, Message: message, cause: cause}
}

// NewInternalError wraps an unclassified storage or infrastructure failure.
func NewInternalError(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, cause: cause}
}

// CodeOf extracts the taxonomy code from err, defaulting to CodeInternal for
// anything unclassified.
func CodeOf(err error) ErrorCode {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// FieldErrorsOf returns the field-level messages carried by err, if any.
func FieldErrorsOf(err error) []FieldError {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Fields
	}
	return nil
}
