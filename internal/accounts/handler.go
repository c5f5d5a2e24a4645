package accounts

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/snapgram/pkg/handlers"
	"github.com/JaimeStill/snapgram/pkg/routes"
)

// Handler provides HTTP endpoints for sessions and the current account.
type Handler struct {
	sys    System
	logger *slog.Logger
	ttl    time.Duration
}

// NewHandler creates a Handler. ttl bounds the session cookie lifetime.
func NewHandler(sys System, logger *slog.Logger, ttl time.Duration) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "accounts"),
		ttl:    ttl,
	}
}

// Routes returns the session route group. Sign-in is public.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/sessions",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: h.SignIn, Public: true},
					{Method: "DELETE", Pattern: "/current", Handler: h.SignOut},
				},
			},
			{
				Prefix: "/account",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.Current},
				},
			},
		},
	}
}

// SignIn accepts JSON credentials, opens a session, and returns it along
// with a session cookie.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errorf("invalid credentials body"))
		return
	}

	session, err := h.sys.SignIn(r.Context(), creds)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	handlers.RespondJSON(w, http.StatusCreated, session)
}

// SignOut deletes the caller's session and clears the session cookie.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	identity, ok := FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}

	if err := h.sys.SignOut(r.Context(), identity.SessionID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Current returns the caller's account.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	identity, ok := FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, identity.Account)
}
