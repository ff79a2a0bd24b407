package pkg

import (
	"errors"
	"fmt"
)

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

// Is reports whether target is the error code, so errors.Is(err, ErrIndexAbsent) works on wrapped errors.
func (e *Error) Is(target error) bool {
	return e.code != nil && e.code == target
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrInternalServerError  = errors.New("internal Server Error")
	ErrNotFound             = errors.New("your requested Item is not found")
	ErrBadParamInput        = errors.New("given Param is not valid")
	ErrUnauthorized         = errors.New("authorization required")
	ErrIndexAbsent          = errors.New("index has not been built for this identifier")
	ErrConsistencyViolation = errors.New("document in postings is missing from the link table")
	ErrExtractionFailure    = errors.New("text extraction failed")
	ErrDownloadFailure      = errors.New("download failed")
)

var MessageInternalServerError string = "internal server error"
