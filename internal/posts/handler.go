package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/internal/accounts"
	"github.com/JaimeStill/snapgram/internal/media"
	"github.com/JaimeStill/snapgram/internal/users"
	"github.com/JaimeStill/snapgram/pkg/formatting"
	"github.com/JaimeStill/snapgram/pkg/handlers"
	"github.com/JaimeStill/snapgram/pkg/pagination"
	"github.com/JaimeStill/snapgram/pkg/routes"
)

// Handler provides HTTP endpoints for post operations.
type Handler struct {
	sys           System
	profiles      Profiles
	logger        *slog.Logger
	maxUploadSize int64
}

// LikesRequest is the body of a like-set replacement.
type LikesRequest struct {
	Likes []uuid.UUID `json:"likes"`
}

// NewHandler creates a Handler. profiles resolves the caller's profile for
// ownership checks on create, update, and delete.
func NewHandler(sys System, profiles Profiles, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		profiles:      profiles,
		logger:        logger.With("handler", "posts"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for post endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/posts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/recent", Handler: h.Recent},
			{Method: "GET", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/creator/{id}", Handler: h.ListByCreator},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "PUT", Pattern: "/{id}/likes", Handler: h.Like},
		},
	}
}

// List returns one feed page. The cursor query parameter continues from a
// previous page; limit may shrink the page below PageSize.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := pagination.CursorRequestFromQuery(r.URL.Query(), feedPagination)

	result, err := h.sys.List(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Recent returns the most recently created posts.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.Recent(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search returns posts whose caption matches the q query parameter.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ListByCreator returns all posts by the user in the id path parameter.
func (h *Handler) ListByCreator(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := h.sys.ListByCreator(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single post by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	p, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Create processes a multipart form with creator, caption, location, tags, and file fields.
// The creator must be the caller's own profile.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, h.tooLarge())
		return
	}

	creator, err := uuid.Parse(r.FormValue("creator"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errorf("invalid creator"))
		return
	}

	if err := h.authorize(r.Context(), creator); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	up, err := media.FormUpload(r, "file")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if up == nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errorf("image required"))
		return
	}

	cmd := CreateCommand{
		Creator:  creator,
		Caption:  r.FormValue("caption"),
		Location: r.FormValue("location"),
		Tags:     r.FormValue("tags"),
		Image:    *up,
	}

	p, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, p)
}

// Update processes a multipart form edit by the post's creator. The file
// field is optional; when absent the post keeps its current image.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, h.tooLarge())
		return
	}

	up, err := media.FormUpload(r, "file")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	current, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.authorize(r.Context(), current.Creator); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	cmd := UpdateCommand{
		ID:       id,
		Caption:  r.FormValue("caption"),
		Location: r.FormValue("location"),
		Tags:     r.FormValue("tags"),
		Current:  current.Image,
		Image:    up,
	}

	p, err := h.sys.Update(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Delete removes a post and its image on behalf of the post's creator.
// The image_id query parameter names the post's image blob.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	current, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.authorize(r.Context(), current.Creator); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.sys.Delete(r.Context(), id, r.URL.Query().Get("image_id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Like replaces the like-set of a post with the ids in the JSON body.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req LikesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errorf("invalid likes body"))
		return
	}

	p, err := h.sys.Like(r.Context(), id, req.Likes)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// authorize confirms the authenticated caller's profile is creator.
func (h *Handler) authorize(ctx context.Context, creator uuid.UUID) error {
	identity, ok := accounts.FromContext(ctx)
	if !ok {
		return accounts.ErrUnauthenticated
	}

	profile, err := h.profiles.FindByAccount(ctx, identity.Account.ID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return fmt.Errorf("%w: account has no profile", accounts.ErrForbidden)
		}
		return err
	}

	if profile.ID != creator {
		return fmt.Errorf("%w: post belongs to another user", accounts.ErrForbidden)
	}
	return nil
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errorf("invalid id %q", r.PathValue("id")))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) tooLarge() error {
	return fmt.Errorf("%w: limit is %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 0))
}
