package storage

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// PreviewContentType is the media type of every rendered preview.
const PreviewContentType = "image/jpeg"

// MaxSourcePixels bounds the decoded size of an image Render will accept.
const MaxSourcePixels = 40_000_000

var gravities = map[string]imaging.Anchor{
	"center":       imaging.Center,
	"top":          imaging.Top,
	"bottom":       imaging.Bottom,
	"left":         imaging.Left,
	"right":        imaging.Right,
	"top-left":     imaging.TopLeft,
	"top-right":    imaging.TopRight,
	"bottom-left":  imaging.BottomLeft,
	"bottom-right": imaging.BottomRight,
}

// PreviewOptions describes a derived image rendition.
// A zero Width or Height preserves the aspect ratio along that axis;
// both zero keeps the original dimensions. Gravity selects the crop anchor
// when both dimensions are set.
type PreviewOptions struct {
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Gravity string `toml:"gravity"`
	Quality int    `toml:"quality"`
}

// Validate reports whether the options describe a renderable preview.
func (o PreviewOptions) Validate() error {
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("%w: negative dimensions", ErrInvalidPreview)
	}
	if o.Width > 4000 || o.Height > 4000 {
		return fmt.Errorf("%w: dimensions exceed 4000", ErrInvalidPreview)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: quality must be between 1 and 100", ErrInvalidPreview)
	}
	if _, ok := gravities[o.Gravity]; !ok {
		return fmt.Errorf("%w: unknown gravity %q", ErrInvalidPreview, o.Gravity)
	}
	return nil
}

// Query encodes the options as URL query parameters.
func (o PreviewOptions) Query() url.Values {
	return url.Values{
		"width":   {strconv.Itoa(o.Width)},
		"height":  {strconv.Itoa(o.Height)},
		"gravity": {o.Gravity},
		"quality": {strconv.Itoa(o.Quality)},
	}
}

// PreviewURL derives the URL at which the preview of the blob at key is served.
// base must be an absolute URL; the key is appended as path segments.
// The derivation is pure: it performs no I/O and does not check that the blob exists.
func PreviewURL(base, key string, opts PreviewOptions) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPreview, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: base url must be absolute: %q", ErrInvalidPreview, base)
	}

	u = u.JoinPath(strings.Split(key, "/")...)
	u.RawQuery = opts.Query().Encode()

	return u.String(), nil
}

// PreviewOptionsFromQuery parses preview parameters, falling back to defaults
// for absent values, and validates the result.
func PreviewOptionsFromQuery(values url.Values, defaults PreviewOptions) (PreviewOptions, error) {
	opts := defaults

	ints := []struct {
		name string
		dst  *int
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"quality", &opts.Quality},
	}

	for _, p := range ints {
		v := values.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %s must be an integer", ErrInvalidPreview, p.name)
		}
		*p.dst = n
	}

	if g := values.Get("gravity"); g != "" {
		opts.Gravity = strings.ToLower(g)
	}

	return opts, opts.Validate()
}

// Render decodes an image from r and writes the JPEG rendition described by opts to w.
// Sources larger than MaxSourcePixels are rejected before their pixels are decoded.
func Render(r io.Reader, w io.Writer, opts PreviewOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return fmt.Errorf("%w: source %dx%d exceeds %d pixels", ErrInvalidPreview, cfg.Width, cfg.Height, MaxSourcePixels)
	}

	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	if err := imaging.Encode(w, resize(img, opts), imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}

	return nil
}

func resize(img image.Image, opts PreviewOptions) image.Image {
	switch {
	case opts.Width > 0 && opts.Height > 0:
		return imaging.Fill(img, opts.Width, opts.Height, gravities[opts.Gravity], imaging.Lanczos)
	case opts.Width > 0 || opts.Height > 0:
		return imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	default:
		return img
	}
}
