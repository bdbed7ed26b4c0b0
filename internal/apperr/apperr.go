// Package apperr defines the recoverable error kinds surfaced by store
// operations. Handlers translate them to HTTP statuses; everything else is
// treated as an internal error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConstraint        = errors.New("constraint violation")
)

type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func Validation(format string, args ...interface{}) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id uint) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf("%s %d not found", entity, id)}
}

func InsufficientStock(productName string, available, requested int) error {
	return &Error{
		kind: ErrInsufficientStock,
		msg:  fmt.Sprintf("insufficient stock for %q: available %d, requested %d", productName, available, requested),
	}
}

func Constraint(format string, args ...interface{}) error {
	return &Error{kind: ErrConstraint, msg: fmt.Sprintf(format, args...)}
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrConstraint):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
