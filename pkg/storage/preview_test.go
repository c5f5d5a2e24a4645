package storage_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/JaimeStill/snapgram/pkg/storage"
)

func defaultPreview() storage.PreviewOptions {
	return storage.PreviewOptions{Width: 2000, Height: 2000, Gravity: "top", Quality: 100}
}

func TestPreviewURL(t *testing.T) {
	got, err := storage.PreviewURL(
		"http://localhost:8080/api/storage/preview",
		"images/4f1c",
		defaultPreview(),
	)
	if err != nil {
		t.Fatalf("PreviewURL() error = %v", err)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if u.Path != "/api/storage/preview/images/4f1c" {
		t.Errorf("path = %q", u.Path)
	}

	q := u.Query()
	if q.Get("width") != "2000" || q.Get("height") != "2000" {
		t.Errorf("dimensions = %s x %s, want 2000 x 2000", q.Get("width"), q.Get("height"))
	}
	if q.Get("gravity") != "top" || q.Get("quality") != "100" {
		t.Errorf("gravity/quality = %s/%s, want top/100", q.Get("gravity"), q.Get("quality"))
	}
}

func TestPreviewURLIsDeterministic(t *testing.T) {
	base := "https://snapgram.example/api/storage/preview"
	a, _ := storage.PreviewURL(base, "images/x", defaultPreview())
	b, _ := storage.PreviewURL(base, "images/x", defaultPreview())
	if a != b {
		t.Errorf("PreviewURL not deterministic: %q != %q", a, b)
	}
}

func TestPreviewURLErrors(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		opts storage.PreviewOptions
		want error
	}{
		{"empty key", "http://host/p", "", defaultPreview(), storage.ErrEmptyKey},
		{"traversal key", "http://host/p", "../secret", defaultPreview(), storage.ErrInvalidKey},
		{"relative base", "/api/storage/preview", "images/x", defaultPreview(), storage.ErrInvalidPreview},
		{"bad quality", "http://host/p", "images/x", storage.PreviewOptions{Gravity: "top", Quality: 0}, storage.ErrInvalidPreview},
		{"bad gravity", "http://host/p", "images/x", storage.PreviewOptions{Gravity: "north", Quality: 80}, storage.ErrInvalidPreview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storage.PreviewURL(tt.base, tt.key, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPreviewOptionsFromQuery(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		values := url.Values{"width": {"300"}, "height": {"200"}, "gravity": {"Center"}}
		opts, err := storage.PreviewOptionsFromQuery(values, defaultPreview())
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if opts.Width != 300 || opts.Height != 200 || opts.Gravity != "center" || opts.Quality != 100 {
			t.Errorf("opts = %+v", opts)
		}
	})

	t.Run("non-integer rejected", func(t *testing.T) {
		_, err := storage.PreviewOptionsFromQuery(url.Values{"width": {"wide"}}, defaultPreview())
		if !errors.Is(err, storage.ErrInvalidPreview) {
			t.Errorf("err = %v, want ErrInvalidPreview", err)
		}
	})

	t.Run("oversized rejected", func(t *testing.T) {
		_, err := storage.PreviewOptionsFromQuery(url.Values{"height": {"9000"}}, defaultPreview())
		if !errors.Is(err, storage.ErrInvalidPreview) {
			t.Errorf("err = %v, want ErrInvalidPreview", err)
		}
	})
}

func sourcePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode source: %v", err)
	}
	return buf.Bytes()
}

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		opts       storage.PreviewOptions
		wantWidth  int
		wantHeight int
	}{
		{"fill both dimensions", storage.PreviewOptions{Width: 40, Height: 20, Gravity: "top", Quality: 80}, 40, 20},
		{"width only keeps aspect", storage.PreviewOptions{Width: 50, Gravity: "center", Quality: 80}, 50, 25},
		{"original dimensions", storage.PreviewOptions{Gravity: "center", Quality: 80}, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := storage.Render(bytes.NewReader(sourcePNG(t, 100, 50)), &out, tt.opts); err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			img, err := imaging.Decode(&out)
			if err != nil {
				t.Fatalf("decode rendition: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.wantWidth || b.Dy() != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestRenderRejectsNonImage(t *testing.T) {
	var out bytes.Buffer
	err := storage.Render(bytes.NewReader([]byte("plain text")), &out, defaultPreview())
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
}

// inflatedPNG returns a valid 1x1 PNG whose header claims w by h pixels.
func inflatedPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := sourcePNG(t, 1, 1)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestRenderRejectsOversizedSource(t *testing.T) {
	var out bytes.Buffer
	err := storage.Render(bytes.NewReader(inflatedPNG(t, 50_000, 50_000)), &out, defaultPreview())
	if !errors.Is(err, storage.ErrInvalidPreview) {
		t.Fatalf("err = %v, want ErrInvalidPreview", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %d bytes for a rejected source", out.Len())
	}
}
