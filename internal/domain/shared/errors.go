// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// Persistence errors
	ErrPersistence       = errors.New("persistence error")
	ErrCapacityExceeded  = errors.New("storage capacity exceeded")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrSyntax            = errors.New("syntax error")
	ErrImportFormat      = errors.New("invalid import format")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrOperationCanceled = errors.New("operation canceled")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "snapshot", "roster"
	Op      string // Operation that failed, e.g., "Add", "Save"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound = NewDomainError("student", "Find", ErrNotFound, "Data mahasiswa tidak ditemukan")
	ErrDuplicateNIM    = NewDomainError("student", "CheckUnique", ErrAlreadyExists, "NIM sudah terdaftar")
	ErrUnknownField    = NewDomainError("student", "ParseField", ErrInvalidInput, "field tidak dikenal")
)

// Snapshot domain errors
var (
	ErrBackupNotFound = NewDomainError("snapshot", "RestoreFromBackup", ErrNotFound, "Tidak ada backup yang tersedia")
)

// MessageOf returns the human-readable message of a domain error, falling back
// to err.Error() for foreign errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// KindOf returns the sentinel kind of a domain error, or nil.
func KindOf(err error) error {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return nil
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsCapacity checks if the error is a storage quota rejection.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}

// IsPersistence checks if the error originates from the persistence layer.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrSyntax) ||
		errors.Is(err, ErrStoreUnavailable)
}

// IsRetryable checks if a store operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
