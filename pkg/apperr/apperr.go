package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can branch on category
// instead of matching message strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindValidation
	KindExternal
	KindPayoutRequired
)

// Error carries a kind plus a human-readable business reason.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is match on kind sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Kind sentinels for errors.Is checks.
var (
	NotFound       = &Error{Kind: KindNotFound}
	Conflict       = &Error{Kind: KindConflict}
	Unauthorized   = &Error{Kind: KindUnauthorized}
	Forbidden      = &Error{Kind: KindForbidden}
	Validation     = &Error{Kind: KindValidation}
	External       = &Error{Kind: KindExternal}
	PayoutRequired = &Error{Kind: KindPayoutRequired}
)

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Externalf(format string, args ...any) error {
	return &Error{Kind: KindExternal, Message: fmt.Sprintf(format, args...)}
}

// Externalw wraps a gateway error so the cause survives logging.
func Externalw(err error, format string, args ...any) error {
	return &Error{Kind: KindExternal, Message: fmt.Sprintf(format, args...), Err: err}
}

func PayoutRequiredf(format string, args ...any) error {
	return &Error{Kind: KindPayoutRequired, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, or KindUnknown if err is not an apperr.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
