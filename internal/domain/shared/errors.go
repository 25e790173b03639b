package shared

import (
	"fmt"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code, so that
// errors.Is(err, ErrNotFound) matches any NOT_FOUND error regardless of message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a NOT_FOUND error naming the missing resource
func NewNotFoundError(resource, id string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found: %s", resource, id))
}

// NewConflictError creates a CONFLICT error
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// Error codes shared by all bounded contexts
const (
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeConflict           = "CONFLICT"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidState       = "INVALID_STATE"
	CodeValidation         = "VALIDATION_ERROR"
	CodeDocumentProcessing = "DOCUMENT_PROCESSING_FAILED"
)

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrConflict      = NewDomainError(CodeConflict, "Resource conflict")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState  = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidID     = NewDomainError(CodeInvalidInput, "Invalid identifier format")

	ErrDocumentProcessing = NewDomainError(CodeDocumentProcessing, "Failed to process document")
)

// FieldError describes a single user-fixable problem with one input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field error found while checking an input.
// It is reported as a whole; checks never stop at the first failure.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Is matches any ValidationError, and the generic VALIDATION_ERROR domain error
func (e *ValidationError) Is(target error) bool {
	switch t := target.(type) {
	case *ValidationError:
		return true
	case *DomainError:
		return t.Code == CodeValidation
	}
	return false
}

// ErrValidation is the sentinel matched by every *ValidationError
var ErrValidation = NewDomainError(CodeValidation, "Validation failed")

// ValidationErrors accumulates field errors
type ValidationErrors struct {
	fields []FieldError
}

// Add records a field error
func (v *ValidationErrors) Add(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

// Addf records a formatted field error
func (v *ValidationErrors) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// Has reports whether an error was already recorded for field
func (v *ValidationErrors) Has(field string) bool {
	for _, f := range v.fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// HasErrors reports whether any field error was recorded
func (v *ValidationErrors) HasErrors() bool {
	return len(v.fields) > 0
}

// Fields returns the recorded field errors
func (v *ValidationErrors) Fields() []FieldError {
	return v.fields
}

// Err returns a *ValidationError when errors were recorded, nil otherwise
func (v *ValidationErrors) Err(message string) error {
	if !v.HasErrors() {
		return nil
	}
	return &ValidationError{Message: message, Fields: v.fields}
}

// NewFieldValidationError creates a ValidationError for a single field
func NewFieldValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}
