package avatars

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/snapgram/pkg/routes"
)

const (
	defaultSize = 128
	maxSize     = 1024
)

// Handler serves initials avatars.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger.With("handler", "avatars")}
}

// Routes returns the public avatar routes.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/avatars",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/initials", Handler: h.Initials, Public: true},
		},
	}
}

// Initials renders the avatar for the name query parameter. An optional
// size parameter sets the pixel dimensions.
func (h *Handler) Initials(w http.ResponseWriter, r *http.Request) {
	size := defaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSize {
			http.Error(w, "size must be between 1 and 1024", http.StatusBadRequest)
			return
		}
		size = n
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(SVG(r.URL.Query().Get("name"), size)); err != nil {
		h.logger.Debug("write avatar", "error", err)
	}
}
