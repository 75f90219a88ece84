package social

import "errors"

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// Error is a domain failure with a message fit for the API response body.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func validation(msg string) error { return &Error{kind: ErrValidation, msg: msg} }
func notFound(msg string) error   { return &Error{kind: ErrNotFound, msg: msg} }
func forbidden(msg string) error  { return &Error{kind: ErrForbidden, msg: msg} }
func conflict(msg string) error   { return &Error{kind: ErrConflict, msg: msg} }
