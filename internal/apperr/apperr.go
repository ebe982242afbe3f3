// Package apperr defines the error taxonomy shared by the store, policy and HTTP layers.
//
// Every failure a handler can classify carries a Kind. The HTTP error handler maps
// kinds to status codes, so lower layers never need to know about HTTP.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the caller should react to it.
type Kind int

const (
	KindUnknown         Kind = iota // unclassified; surfaced as 500
	KindValidation                  // missing or malformed input field (400)
	KindUnauthenticated             // no valid session (401)
	KindForbidden                   // authenticated but not allowed (403)
	KindNotFound                    // referenced row does not exist (404)
	KindConflict                    // unique constraint violation (409)
	KindSchemaMismatch              // query referenced a column/table the database does not have
	KindDataStore                   // any other database failure (500)
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindDataStore:
		return "data_store"
	default:
		return "unknown"
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Field   string // offending input field, for validation errors
	Message string // user-facing message
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a missing or malformed request field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

// Required is shorthand for the common "x is required" validation error.
func Required(field string) *Error {
	return Validation(field, field+" is required")
}

// NotFound reports that the named resource does not exist.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Unauthenticated reports a request without a usable session.
func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "unauthorized"}
}

// Forbidden reports an authenticated caller acting on something they do not own.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Wrap classifies err with kind, keeping err as the cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
