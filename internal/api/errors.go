package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cheahjs/leangen/internal/upload"
)

// formError marks malformed form input. It is reported as 400.
type formError struct {
	msg string
}

func (e *formError) Error() string { return e.msg }

func newFormError(format string, args ...any) error {
	return &formError{msg: fmt.Sprintf(format, args...)}
}

// statusFor maps a handler error onto the response status.
func statusFor(err error) int {
	var fe *formError
	switch {
	case errors.As(err, &fe), errors.Is(err, upload.ErrTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
