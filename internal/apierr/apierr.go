// Package apierr ошибки с HTTP-статусом для ответов хендлеров.
package apierr

import (
	"errors"
	"net/http"
)

// Error ошибка, которую хендлер отдаёт клиенту с кодом Status
type Error struct {
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Err: errors.New(msg)}
}

func NotFound(err error) *Error {
	return &Error{Status: http.StatusNotFound, Err: err}
}

func Conflict(err error) *Error {
	return &Error{Status: http.StatusConflict, Err: err}
}

// StatusOf достаёт статус из цепочки ошибок, по умолчанию 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}
