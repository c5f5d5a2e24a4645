// Package media manages the lifecycle of images referenced by posts and
// user profiles: upload, preview derivation, and compensating deletion.
//
// The ordering rules keep two properties: a record never references a
// deleted blob, and a blob uploaded by an abandoned mutation is deleted.
package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// KeyPrefix is the blob key prefix under which all images are stored.
const KeyPrefix = "images/"

// Image is a stored image reference. ID is the blob key and URL the derived
// preview URL. The zero value means no image.
type Image struct {
	URL string `json:"imageUrl"`
	ID  string `json:"imageId"`
}

// IsZero reports whether the image references no blob.
func (i Image) IsZero() bool {
	return i.ID == ""
}

// Upload carries raw image bytes received from a client.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// System attaches and releases image blobs.
type System interface {
	// Attach uploads the image and derives its preview URL.
	// If derivation fails the uploaded blob is deleted before returning.
	Attach(ctx context.Context, up Upload) (Image, error)
	// Release deletes the blob with the given id. Failures are logged, not returned.
	Release(ctx context.Context, id string)
}

// Create attaches up and persists the record built from the resulting image.
// When persist fails the new blob is released and the error wraps both
// ErrPersistFailed and the persist error.
func Create[T any](ctx context.Context, sys System, up Upload, persist func(Image) (T, error)) (T, error) {
	var zero T

	img, err := sys.Attach(ctx, up)
	if err != nil {
		return zero, err
	}

	result, err := persist(img)
	if err != nil {
		sys.Release(ctx, img.ID)
		return zero, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	return result, nil
}

// Replace persists a record whose image may change.
// A nil up persists with current unchanged and touches no blobs.
// Otherwise the new image is attached first; if persist then fails the new
// blob is released and current stays valid, and if persist succeeds the
// now unreferenced current blob is released.
func Replace[T any](ctx context.Context, sys System, current Image, up *Upload, persist func(Image) (T, error)) (T, error) {
	var zero T

	if up == nil {
		result, err := persist(current)
		if err != nil {
			return zero, fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}
		return result, nil
	}

	img, err := sys.Attach(ctx, *up)
	if err != nil {
		return zero, err
	}

	result, err := persist(img)
	if err != nil {
		sys.Release(ctx, img.ID)
		return zero, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	if !current.IsZero() && current.ID != img.ID {
		sys.Release(ctx, current.ID)
	}

	return result, nil
}

func newKey() string {
	return KeyPrefix + uuid.NewString()
}
