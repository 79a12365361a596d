package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindNotFound         ErrorKind = "not_found"
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindForbidden        ErrorKind = "forbidden"
)

// Error is the tagged failure every service operation returns.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrForbidden        = &Error{Kind: KindForbidden}

	ErrInvalidAdminCredentials = &Error{Kind: KindUnauthorized, Message: "invalid admin credentials"}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind; a target carrying a message must match it too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// KindOf returns the kind of a service error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func validationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func storeError(op string, err error) error {
	return &Error{Kind: KindStoreUnavailable, Message: "failed to " + op, Err: err}
}
