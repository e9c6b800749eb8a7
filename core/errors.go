package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// Conflict codes. Callers map these to corrective UI messages.
const (
	ConflictDuplicateInstance   = "DUPLICATE_INSTANCE"
	ConflictDuplicateAssignment = "DUPLICATE_ASSIGNMENT"
	ConflictSelfEvaluation      = "SELF_EVALUATION"
	ConflictAlreadyEvaluated    = "ALREADY_EVALUATED"
	ConflictStaleDate           = "STALE_DATE"
)

// ConflictError indicates that creating/submitting a row would violate a
// uniqueness or eligibility invariant. ExistingID carries the id of the
// pre-existing row when there is one (e.g. the duplicate instance), so the
// caller can offer "edit" instead of "create".
type ConflictError struct {
	Code       string
	Err        error
	ExistingID int
}

func NewConflictError(code string, err error, existingID ...int) error {
	cErr := &ConflictError{Code: code, Err: err}
	if len(existingID) > 0 {
		cErr.ExistingID = existingID[0]
	}
	return cErr
}

func (err ConflictError) Error() string {
	if err.Err == nil {
		return err.Code
	}
	return err.Err.Error()
}

// IsConflict reports whether err is a ConflictError, optionally with a specific code.
func IsConflict(err error, code ...string) bool {
	cErr, ok := errors.Cause(err).(*ConflictError)
	if !ok {
		return false
	}
	if len(code) > 0 {
		return cErr.Code == code[0]
	}
	return true
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
