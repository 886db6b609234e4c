package core

import "github.com/pkg/errors"

// ErrReferenced is returned when the database refuses a delete because other rows still point at the row.
var ErrReferenced = errors.New("record is still referenced by other records")

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

// IntegrityError is returned by dependency guards when a mutation would orphan other rows.
type IntegrityError struct {
	Message string
}

func NewIntegrityError(msg string) error {
	return &IntegrityError{Message: msg}
}

func (err IntegrityError) Error() string {
	return err.Message
}

// IsIntegrity reports whether err is (or wraps) an *IntegrityError or ErrReferenced.
func IsIntegrity(err error) bool {
	cause := errors.Cause(err)
	if cause == ErrReferenced {
		return true
	}
	_, ok := cause.(*IntegrityError)
	return ok
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
