package posts

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/snapgram/internal/accounts"
	"github.com/JaimeStill/snapgram/internal/media"
)

// Domain errors for post operations.
var (
	ErrNotFound     = errors.New("post not found")
	ErrDuplicate    = errors.New("post already exists")
	ErrInvalidInput = errors.New("invalid post input")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrUnknownUser  = errors.New("referenced user does not exist")
)

func errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// MapHTTPStatus maps post, account, and media errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownUser):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}

	if status := accounts.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return media.MapHTTPStatus(err)
}
