package domain

import (
	"errors"
	"fmt"
)

// ValidationKind classifies why a field was rejected.
type ValidationKind string

const (
	KindMissing     ValidationKind = "missing"
	KindMalformed   ValidationKind = "malformed"
	KindOutOfDomain ValidationKind = "out_of_domain"
)

// ValidationError names the offending field. Error() is the single message
// returned to clients.
type ValidationError struct {
	Field string
	Kind  ValidationKind
	Msg   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Msg
}

func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Field: field,
		Kind:  KindMissing,
		Msg:   fmt.Sprintf("Missing required field: %s", field),
	}
}

// ScoringError wraps a failure of a stage's scoring capability.
type ScoringError struct {
	Stage string
	Err   error
}

func (e *ScoringError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s scoring failed: %v", e.Stage, e.Err)
}

func (e *ScoringError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsScoringError(err error) bool {
	var se *ScoringError
	return errors.As(err, &se)
}
