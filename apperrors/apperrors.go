package apperrors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Category sentinels. Match with errors.Is; build with the New* constructors
// so the user-facing message travels with the category.
var (
	ErrValidation  = errors.New("validation")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrConsistency = errors.New("consistency")
)

type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.kind }

func New(kind error, message string) *Error {
	return &Error{kind: kind, Message: message}
}

func NewValidation(message string) *Error { return New(ErrValidation, message) }

func NewNotFound(message string) *Error { return New(ErrNotFound, message) }

func NewConflict(message string) *Error { return New(ErrConflict, message) }

func NewForbidden(message string) *Error { return New(ErrForbidden, message) }

func NewConsistency(message string) *Error { return New(ErrConsistency, message) }

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

func IsConsistency(err error) bool { return errors.Is(err, ErrConsistency) }

// Message returns the user-facing text of a taxonomy error, or a generic
// fallback for anything else so internals never leak into responses.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong!"
}

// Duplicate reports whether err is a unique-constraint violation from any of
// the supported drivers.
func Duplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || // postgres
		strings.Contains(msg, "error 1062") || // mysql
		strings.Contains(msg, "unique constraint failed") // sqlite
}
