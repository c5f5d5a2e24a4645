package api

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/snapgram/pkg/handlers"
	"github.com/JaimeStill/snapgram/pkg/routes"
	"github.com/JaimeStill/snapgram/pkg/storage"
)

const previewCacheControl = "public, max-age=31536000, immutable"

type storageHandler struct {
	store    storage.System
	logger   *slog.Logger
	defaults storage.PreviewOptions
	renders  singleflight.Group
}

func newStorageHandler(
	store storage.System,
	logger *slog.Logger,
	defaults storage.PreviewOptions,
) *storageHandler {
	return &storageHandler{
		store:    store,
		logger:   logger.With("handler", "storage"),
		defaults: defaults,
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/preview/{key...}", Handler: h.preview, Public: true},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download},
		},
	}
}

// preview renders the blob at key with the requested options. Blob keys are
// never reused, so renditions are cacheable indefinitely. Concurrent requests
// for the same rendition share one download and encode.
func (h *storageHandler) preview(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	opts, err := storage.PreviewOptionsFromQuery(r.URL.Query(), h.defaults)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	flight := key + "?" + opts.Query().Encode()
	ctx := context.WithoutCancel(r.Context())

	v, err, _ := h.renders.Do(flight, func() (any, error) {
		return h.render(ctx, key, opts)
	})
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	data := v.([]byte)
	w.Header().Set("Content-Type", storage.PreviewContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", previewCacheControl)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *storageHandler) render(ctx context.Context, key string, opts storage.PreviewOptions) ([]byte, error) {
	body, err := h.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var buf bytes.Buffer
	if err := storage.Render(body, &buf, opts); err != nil {
		return nil, fmt.Errorf("render %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	br := bufio.NewReaderSize(body, 512)
	head, _ := br.Peek(512)

	w.Header().Set("Content-Type", http.DetectContentType(head))
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, br); err != nil {
		h.logger.Warn("download interrupted", "key", key, "error", err)
	}
}
