package users

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/snapgram/internal/accounts"
	"github.com/JaimeStill/snapgram/internal/media"
)

// Domain errors for user operations.
var (
	ErrNotFound     = errors.New("user not found")
	ErrDuplicate    = errors.New("username already taken")
	ErrInvalidInput = errors.New("invalid user input")
	ErrFileTooLarge = errors.New("file too large")
)

func errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// MapHTTPStatus maps user, account, and media errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}

	if status := accounts.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return media.MapHTTPStatus(err)
}
