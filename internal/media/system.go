package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/JaimeStill/snapgram/pkg/storage"
)

// MaxPixels bounds the decoded size of an accepted image.
const MaxPixels = storage.MaxSourcePixels

type repo struct {
	storage     storage.System
	previewBase string
	preview     storage.PreviewOptions
	logger      *slog.Logger
}

// New creates a media System storing images in store and deriving preview
// URLs under previewBase with the given rendition options.
func New(
	store storage.System,
	previewBase string,
	preview storage.PreviewOptions,
	logger *slog.Logger,
) System {
	return &repo{
		storage:     store,
		previewBase: previewBase,
		preview:     preview,
		logger:      logger.With("system", "media"),
	}
}

func (r *repo) Attach(ctx context.Context, up Upload) (Image, error) {
	contentType, err := validate(up)
	if err != nil {
		return Image{}, err
	}

	key := newKey()

	if err := r.storage.Upload(ctx, key, bytes.NewReader(up.Data), contentType); err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	url, err := storage.PreviewURL(r.previewBase, key, r.preview)
	if err != nil {
		r.Release(ctx, key)
		return Image{}, fmt.Errorf("%w: %w", ErrPreviewFailed, err)
	}

	r.logger.Info("image attached", "key", key, "size", len(up.Data))
	return Image{URL: url, ID: key}, nil
}

func (r *repo) Release(ctx context.Context, id string) {
	if id == "" {
		return
	}

	if err := r.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.logger.Debug("image already released", "key", id)
			return
		}
		r.logger.Warn("compensating blob delete failed", "key", id, "error", err)
		return
	}

	r.logger.Info("image released", "key", id)
}

// validate decodes the image header from the bytes themselves; the declared
// content type is never trusted. It returns the content type of the format found.
func validate(up Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		return "", fmt.Errorf("%w: unrecognized image data: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("%w: empty dimensions", ErrInvalidImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, MaxPixels)
	}

	return "image/" + format, nil
}

// DetectContentType prefers a specific declared type and sniffs the data otherwise.
// The result is informational; Attach derives the stored type from the data.
func DetectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}
