package domain

import (
	"errors"
	"strings"
)

// Kind classifies a failure for callers and for the HTTP error body.
type Kind string

const (
	KindValueExists       Kind = "value_exists"
	KindValueNotFound     Kind = "value_not_found"
	KindNotFound          Kind = "not_found"
	KindValueInvalid      Kind = "value_invalid"
	KindValueLocked       Kind = "value_locked"
	KindValueEmpty        Kind = "value_empty"
	KindAccessDenied      Kind = "access_denied"
	KindAttemptsSuspended Kind = "attempts_suspended"
	KindTokenEmpty        Kind = "token_empty"
	KindTokenInvalid      Kind = "token_invalid"
	KindTokenExpired      Kind = "token_expired"
	KindTokenRejected     Kind = "token_rejected"
	KindTokenDenied       Kind = "token_denied"
	KindInvalidFilter     Kind = "invalid_filter"
	KindFileMime          Kind = "file_mime"
	KindDecrypt           Kind = "decrypt_error"
)

var messages = map[Kind]string{
	KindValueExists:       "The value already exists",
	KindValueNotFound:     "The value not found",
	KindNotFound:          "Not found",
	KindValueInvalid:      "The value is invalid",
	KindValueLocked:       "The value is locked",
	KindValueEmpty:        "The value is empty",
	KindAccessDenied:      "Access denied.",
	KindAttemptsSuspended: "Attempts are temporarily suspended",
	KindTokenEmpty:        "The token is empty",
	KindTokenInvalid:      "The token is invalid",
	KindTokenExpired:      "The token has expired",
	KindTokenRejected:     "The token contains an invalid JTI or user identifier",
	KindTokenDenied:       "The token does not have enough permissions",
	KindInvalidFilter:     "The filter is invalid",
	KindFileMime:          "Invalid file mimetype.",
	KindDecrypt:           "The stored value cannot be decrypted",
}

// Locations of the value an error refers to.
const (
	LocBody   = "body"
	LocHeader = "header"
	LocPath   = "path"
	LocQuery  = "query"
	LocFile   = "file"
)

// Error is a classified failure attributed to a request location such as
// ["body", "user_login"].
type Error struct {
	Loc  []string
	Kind Kind
	Msg  string
	Err  error
}

// NewError builds an error of kind at loc with the standard message.
func NewError(kind Kind, loc ...string) *Error {
	return &Error{Loc: loc, Kind: kind, Msg: messages[kind]}
}

// Wrap attaches the underlying cause.
func (e *Error) Wrap(err error) *Error {
	out := *e
	out.Err = err
	return &out
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if len(e.Loc) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Loc, "."))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of location.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValueExists       = NewError(KindValueExists)
	ErrValueNotFound     = NewError(KindValueNotFound)
	ErrNotFound          = NewError(KindNotFound)
	ErrValueInvalid      = NewError(KindValueInvalid)
	ErrValueLocked       = NewError(KindValueLocked)
	ErrValueEmpty        = NewError(KindValueEmpty)
	ErrAccessDenied      = NewError(KindAccessDenied)
	ErrAttemptsSuspended = NewError(KindAttemptsSuspended)
	ErrTokenEmpty        = NewError(KindTokenEmpty)
	ErrTokenInvalid      = NewError(KindTokenInvalid)
	ErrTokenExpired      = NewError(KindTokenExpired)
	ErrTokenRejected     = NewError(KindTokenRejected)
	ErrTokenDenied       = NewError(KindTokenDenied)
	ErrInvalidFilter     = NewError(KindInvalidFilter)
	ErrFileMime          = NewError(KindFileMime)
	ErrDecrypt           = NewError(KindDecrypt)
)

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
