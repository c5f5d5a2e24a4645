package api

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/JaimeStill/snapgram/pkg/lifecycle"
	"github.com/JaimeStill/snapgram/pkg/routes"
	"github.com/JaimeStill/snapgram/pkg/storage"
)

type memStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	downloads atomic.Int32
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (s *memStore) Start(*lifecycle.Coordinator) error { return nil }

func (s *memStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	s.downloads.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.NRGBA{R: 200, G: uint8(y), B: uint8(x), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func setupStorageMux(store storage.System) *http.ServeMux {
	h := newStorageHandler(store, discardLogger(), storage.PreviewOptions{
		Width: 40, Height: 40, Gravity: "top", Quality: 90,
	})
	mux := http.NewServeMux()
	routes.Register(mux, h.routes())
	return mux
}

func TestPreview(t *testing.T) {
	store := newMemStore()
	store.blobs["images/a"] = pngBytes(t, 120, 60)
	mux := setupStorageMux(store)

	t.Run("defaults", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/storage/preview/images/a", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != storage.PreviewContentType {
			t.Errorf("Content-Type = %q", ct)
		}
		if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
			t.Errorf("Cache-Control = %q", cc)
		}

		img, err := imaging.Decode(rec.Body)
		if err != nil {
			t.Fatalf("decode preview: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
			t.Errorf("size = %dx%d, want 40x40", b.Dx(), b.Dy())
		}
	})

	t.Run("query overrides", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/storage/preview/images/a?width=60&height=0", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		img, err := imaging.Decode(rec.Body)
		if err != nil {
			t.Fatalf("decode preview: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 30 {
			t.Errorf("size = %dx%d, want 60x30", b.Dx(), b.Dy())
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/storage/preview/images/a?gravity=north", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing blob", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/storage/preview/images/missing", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("not an image", func(t *testing.T) {
		store.blobs["images/text"] = []byte("plain text")
		req := httptest.NewRequest("GET", "/storage/preview/images/text", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestDownload(t *testing.T) {
	store := newMemStore()
	data := pngBytes(t, 4, 4)
	store.blobs["images/b"] = data
	mux := setupStorageMux(store)

	t.Run("streams blob", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/storage/download/images/b", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q, want image/png", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="b"` {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if !bytes.Equal(rec.Body.Bytes(), data) {
			t.Error("body does not match stored blob")
		}
	})

	t.Run("missing blob", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/storage/download/images/none", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestDownloadRouteIsGuarded(t *testing.T) {
	h := newStorageHandler(newMemStore(), discardLogger(), storage.PreviewOptions{Gravity: "top", Quality: 80})
	mux := http.NewServeMux()
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	routes.RegisterGuarded(mux, deny, h.routes())

	tests := []struct {
		path string
		want int
	}{
		{"/storage/download/images/x", http.StatusUnauthorized},
		{"/storage/preview/images/x", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
