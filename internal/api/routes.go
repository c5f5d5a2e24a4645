package api

import (
	"net/http"

	"github.com/JaimeStill/snapgram/internal/accounts"
	"github.com/JaimeStill/snapgram/internal/avatars"
	"github.com/JaimeStill/snapgram/internal/config"
	"github.com/JaimeStill/snapgram/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	storageHandler := newStorageHandler(runtime.Storage, runtime.Logger, runtime.Preview)

	routes.RegisterGuarded(
		mux,
		accounts.Authenticate(domain.Accounts, runtime.Logger),
		domain.Accounts.Handler().Routes(),
		domain.Users.Handler(maxUpload).Routes(),
		domain.Posts.Handler(maxUpload).Routes(),
		domain.Saves.Handler().Routes(),
		avatars.NewHandler(runtime.Logger).Routes(),
		storageHandler.routes(),
	)
}
