package saves

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for save operations.
var (
	ErrNotFound         = errors.New("save not found")
	ErrDuplicate        = errors.New("save already exists")
	ErrInvalidInput     = errors.New("invalid save input")
	ErrUnknownReference = errors.New("referenced user or post does not exist")
)

func errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// MapHTTPStatus maps save domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
