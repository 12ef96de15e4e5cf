package core

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// ValidationError reports input that was refused before reaching storage.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

func requiredField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "required field is empty"}
}

func invalidReference(field, entity string, id ID) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("invalid reference: %s %q does not exist", entity, id),
	}
}

// NotFoundError reports a mutation that targets a missing identifier.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError for an entity kind and identifier.
func NotFound(entity string, id ID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: string(id)}
}

// TransportError reports a failure talking to the persistence backend.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// storageError classifies a backend failure. Not-found and already classified
// errors pass through; anything else becomes a TransportError.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
