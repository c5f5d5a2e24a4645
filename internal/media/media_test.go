package media_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/snapgram/internal/media"
	"github.com/JaimeStill/snapgram/pkg/lifecycle"
	"github.com/JaimeStill/snapgram/pkg/storage"
)

const previewBase = "http://localhost:8080/api/storage/preview"

var previewOpts = storage.PreviewOptions{Width: 2000, Height: 2000, Gravity: "top", Quality: 100}

type fakeStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
	types     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string][]byte)}
}

func (f *fakeStore) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = data
	f.types = append(f.types, contentType)
	return nil
}

func (f *fakeStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[key]
	return ok, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

func (f *fakeStore) lastContentType() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.types) == 0 {
		return ""
	}
	return f.types[len(f.types)-1]
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSystem(store storage.System) media.System {
	return media.New(store, previewBase, previewOpts, discard())
}

func encodePNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.NRGBA{R: 200, G: uint8(x * 40), B: 90, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// inflatedPNG returns a valid 1x1 PNG whose header claims w by h pixels.
func inflatedPNG(w, h uint32) []byte {
	data := encodePNG(1, 1)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func pngUpload() media.Upload {
	return media.Upload{
		Data:        encodePNG(4, 2),
		Filename:    "photo.png",
		ContentType: "image/png",
	}
}

type record struct {
	Image media.Image
}

var errStore = errors.New("document store unavailable")

func TestAttach(t *testing.T) {
	store := newFakeStore()
	sys := newSystem(store)

	img, err := sys.Attach(context.Background(), pngUpload())
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	if !strings.HasPrefix(img.ID, media.KeyPrefix) {
		t.Errorf("ID = %q, want %s prefix", img.ID, media.KeyPrefix)
	}
	if !strings.HasPrefix(img.URL, previewBase+"/"+img.ID+"?") {
		t.Errorf("URL = %q, want preview of %s", img.URL, img.ID)
	}
	if ok, _ := store.Exists(context.Background(), img.ID); !ok {
		t.Error("uploaded blob missing from store")
	}
}

func TestAttachUploadFailure(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = errors.New("connection refused")

	_, err := newSystem(store).Attach(context.Background(), pngUpload())
	if !errors.Is(err, media.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	if store.count() != 0 {
		t.Errorf("blobs = %d, want 0", store.count())
	}
}

func TestAttachPreviewFailureReleasesBlob(t *testing.T) {
	store := newFakeStore()
	sys := media.New(store, "/relative/base", previewOpts, discard())

	_, err := sys.Attach(context.Background(), pngUpload())
	if !errors.Is(err, media.ErrPreviewFailed) {
		t.Fatalf("err = %v, want ErrPreviewFailed", err)
	}
	if store.count() != 0 {
		t.Errorf("blobs = %d, want 0 after compensation", store.count())
	}
	if len(store.deleted) != 1 {
		t.Errorf("deletes = %d, want 1", len(store.deleted))
	}
}

func TestAttachRejectsInvalidUpload(t *testing.T) {
	tests := []struct {
		name string
		up   media.Upload
	}{
		{"empty", media.Upload{ContentType: "image/png"}},
		{"not an image", media.Upload{Data: []byte("hello world"), ContentType: "text/plain"}},
		{"sniffed text", media.Upload{Data: []byte("hello world")}},
		{"script declared as png", media.Upload{Data: []byte("#!/bin/sh\necho not an image\n"), ContentType: "image/png"}},
		{"png signature only", media.Upload{Data: []byte("\x89PNG\r\n\x1a\n0000"), ContentType: "image/png"}},
		{"oversized dimensions", media.Upload{Data: inflatedPNG(60_000, 60_000), ContentType: "image/png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			_, err := newSystem(store).Attach(context.Background(), tt.up)
			if !errors.Is(err, media.ErrInvalidImage) {
				t.Errorf("err = %v, want ErrInvalidImage", err)
			}
			if store.count() != 0 {
				t.Error("invalid upload reached the store")
			}
		})
	}
}

func TestAttachStoresDetectedContentType(t *testing.T) {
	store := newFakeStore()
	up := pngUpload()
	up.ContentType = "image/gif"

	if _, err := newSystem(store).Attach(context.Background(), up); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if got := store.lastContentType(); got != "image/png" {
		t.Errorf("stored content type = %q, want image/png", got)
	}
}

func TestCreate(t *testing.T) {
	t.Run("persists with attached image", func(t *testing.T) {
		store := newFakeStore()

		rec, err := media.Create(context.Background(), newSystem(store), pngUpload(), func(img media.Image) (record, error) {
			return record{Image: img}, nil
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if rec.Image.IsZero() || rec.Image.URL == "" {
			t.Errorf("image = %+v, want populated", rec.Image)
		}
		if store.count() != 1 {
			t.Errorf("blobs = %d, want 1", store.count())
		}
	})

	t.Run("persist failure releases blob", func(t *testing.T) {
		store := newFakeStore()

		_, err := media.Create(context.Background(), newSystem(store), pngUpload(), func(media.Image) (record, error) {
			return record{}, errStore
		})
		if !errors.Is(err, media.ErrPersistFailed) {
			t.Errorf("err = %v, want ErrPersistFailed", err)
		}
		if !errors.Is(err, errStore) {
			t.Errorf("err = %v, want wrapped store error", err)
		}
		if store.count() != 0 {
			t.Errorf("blobs = %d, want 0", store.count())
		}
	})

	t.Run("failed compensation still returns persist error", func(t *testing.T) {
		store := newFakeStore()
		store.deleteErr = errors.New("delete timeout")

		_, err := media.Create(context.Background(), newSystem(store), pngUpload(), func(media.Image) (record, error) {
			return record{}, errStore
		})
		if !errors.Is(err, media.ErrPersistFailed) {
			t.Errorf("err = %v, want ErrPersistFailed", err)
		}
	})

	t.Run("upload failure skips persist", func(t *testing.T) {
		store := newFakeStore()
		store.uploadErr = errors.New("quota exceeded")

		called := false
		_, err := media.Create(context.Background(), newSystem(store), pngUpload(), func(media.Image) (record, error) {
			called = true
			return record{}, nil
		})
		if !errors.Is(err, media.ErrUploadFailed) {
			t.Errorf("err = %v, want ErrUploadFailed", err)
		}
		if called {
			t.Error("persist called after upload failure")
		}
	})
}

func TestReplace(t *testing.T) {
	seed := func(t *testing.T, store *fakeStore, sys media.System) media.Image {
		t.Helper()
		img, err := sys.Attach(context.Background(), pngUpload())
		if err != nil {
			t.Fatalf("seed attach: %v", err)
		}
		return img
	}

	t.Run("no upload retains current image", func(t *testing.T) {
		store := newFakeStore()
		sys := newSystem(store)
		current := seed(t, store, sys)

		rec, err := media.Replace(context.Background(), sys, current, nil, func(img media.Image) (record, error) {
			return record{Image: img}, nil
		})
		if err != nil {
			t.Fatalf("Replace() error = %v", err)
		}
		if rec.Image != current {
			t.Errorf("image = %+v, want %+v", rec.Image, current)
		}
		if len(store.deleted) != 0 {
			t.Errorf("deletes = %v, want none", store.deleted)
		}
	})

	t.Run("success releases old blob", func(t *testing.T) {
		store := newFakeStore()
		sys := newSystem(store)
		current := seed(t, store, sys)
		up := pngUpload()

		rec, err := media.Replace(context.Background(), sys, current, &up, func(img media.Image) (record, error) {
			return record{Image: img}, nil
		})
		if err != nil {
			t.Fatalf("Replace() error = %v", err)
		}
		if rec.Image.ID == current.ID {
			t.Error("record still references old image")
		}
		if ok, _ := store.Exists(context.Background(), current.ID); ok {
			t.Error("old blob still present")
		}
		if ok, _ := store.Exists(context.Background(), rec.Image.ID); !ok {
			t.Error("new blob missing")
		}
	})

	t.Run("persist failure releases new blob and keeps old", func(t *testing.T) {
		store := newFakeStore()
		sys := newSystem(store)
		current := seed(t, store, sys)
		up := pngUpload()

		var attempted media.Image
		_, err := media.Replace(context.Background(), sys, current, &up, func(img media.Image) (record, error) {
			attempted = img
			return record{}, errStore
		})
		if !errors.Is(err, media.ErrPersistFailed) {
			t.Fatalf("err = %v, want ErrPersistFailed", err)
		}
		if ok, _ := store.Exists(context.Background(), current.ID); !ok {
			t.Error("old blob deleted after failed update")
		}
		if ok, _ := store.Exists(context.Background(), attempted.ID); ok {
			t.Error("new blob orphaned after failed update")
		}
		if store.count() != 1 {
			t.Errorf("blobs = %d, want 1", store.count())
		}
	})

	t.Run("no current image releases nothing", func(t *testing.T) {
		store := newFakeStore()
		sys := newSystem(store)
		up := pngUpload()

		_, err := media.Replace(context.Background(), sys, media.Image{}, &up, func(img media.Image) (record, error) {
			return record{Image: img}, nil
		})
		if err != nil {
			t.Fatalf("Replace() error = %v", err)
		}
		if len(store.deleted) != 0 {
			t.Errorf("deletes = %v, want none", store.deleted)
		}
	})
}

func TestReleaseSwallowsErrors(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("network down")

	newSystem(store).Release(context.Background(), "images/missing")
	newSystem(store).Release(context.Background(), "")

	if len(store.deleted) != 1 {
		t.Errorf("deletes = %d, want 1 (empty id skipped)", len(store.deleted))
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{media.ErrInvalidImage, http.StatusBadRequest},
		{media.ErrUploadFailed, http.StatusBadGateway},
		{media.ErrPreviewFailed, http.StatusInternalServerError},
		{media.ErrPersistFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := media.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
