package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies business-rule failures. Errors without a Kind are treated
// as fatal infrastructure failures by the transport layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindPermission
	KindStateConflict
	KindInsufficientBalance
	KindOverlap
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindStateConflict:
		return "state_conflict"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindOverlap:
		return "overlap"
	default:
		return "unknown"
	}
}

type AppError struct {
	Kind    Kind
	Code    string // machine readable, e.g. LEAVE_REQUEST_NOT_FOUND
	Message string // user-facing
	Err     error  // optional wrapped cause
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so that sentinels survive Wrap and WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind
}

func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// Wrap returns a copy of sentinel carrying err as its cause.
func Wrap(sentinel *AppError, err error) *AppError {
	if sentinel == nil {
		return nil
	}
	return &AppError{Kind: sentinel.Kind, Code: sentinel.Code, Message: sentinel.Message, Err: err}
}

// WithMessage returns a copy of sentinel with a more specific message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{Kind: sentinel.Kind, Code: sentinel.Code, Message: message}
}

func Validation(code, message string) *AppError {
	return New(KindValidation, code, message)
}

func NotFound(code, message string) *AppError {
	return New(KindNotFound, code, message)
}

func Permission(code, message string) *AppError {
	return New(KindPermission, code, message)
}

func StateConflict(code, message string) *AppError {
	return New(KindStateConflict, code, message)
}

// KindOf reports the Kind of the first AppError in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
