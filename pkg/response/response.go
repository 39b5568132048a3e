package response

import (
	"errors"
)

// Error is a domain error that knows the HTTP status and the machine readable
// key it should be reported with. Cause is never shown to clients.
type Error struct {
	Code  int
	Key   string
	Err   error
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Cause.Error()
}

// Message is the client facing part of the error.
func (e *Error) Message() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Key == t.Key
}

func NewError(code int, key string, err string) error {
	return &Error{Code: code, Key: key, Err: errors.New(err)}
}

// Wrap attaches a cause to a sentinel created with NewError, keeping its
// status and key so errors.Is still matches the sentinel.
func Wrap(sentinel error, cause error) error {
	var base *Error
	if !errors.As(sentinel, &base) {
		return errors.Join(sentinel, cause)
	}
	return &Error{
		Code:  base.Code,
		Key:   base.Key,
		Err:   base.Err,
		Cause: cause,
	}
}
