package media

import (
	"errors"
	"net/http"
)

var (
	// ErrUploadFailed indicates the image could not be written to the blob store.
	ErrUploadFailed = errors.New("image upload failed")
	// ErrPreviewFailed indicates a preview URL could not be derived for an uploaded image.
	ErrPreviewFailed = errors.New("image preview derivation failed")
	// ErrPersistFailed indicates the record referencing the image could not be saved.
	ErrPersistFailed = errors.New("record persist failed")
	// ErrInvalidImage indicates the upload is empty, not a decodable image, or too large.
	ErrInvalidImage = errors.New("invalid image")
)

// MapHTTPStatus maps media errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, ErrUploadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
