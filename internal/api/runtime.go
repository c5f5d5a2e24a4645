package api

import (
	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/snapgram/internal/accounts"
	"github.com/JaimeStill/snapgram/internal/config"
	"github.com/JaimeStill/snapgram/internal/infrastructure"
	"github.com/JaimeStill/snapgram/internal/media"
	"github.com/JaimeStill/snapgram/pkg/pagination"
	"github.com/JaimeStill/snapgram/pkg/storage"
)

// Runtime extends Infrastructure with API-specific configuration and the
// shared services domain systems are built from.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Preview    storage.PreviewOptions
	Media      media.System
	Tokens     *accounts.Tokens
	Verifier   accounts.IDTokenVerifier
}

// NewRuntime creates an API runtime with a module-scoped logger.
// The OIDC verifier is only created when an external issuer is configured.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	rt := &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Preview:    cfg.Media.Preview,
		Media:      media.New(infra.Storage, cfg.PreviewBase(), cfg.Media.Preview, logger),
		Tokens: accounts.NewTokens(
			cfg.Auth.TokenSecret,
			cfg.Auth.Issuer,
			cfg.Auth.TokenTTLDuration(),
		),
	}

	if oc := cfg.Auth.OIDC; oc.Enabled() {
		keys := oidc.NewRemoteKeySet(infra.Lifecycle.Context(), oc.JWKSURL)
		rt.Verifier = accounts.NewOIDCVerifier(oc.Issuer, oc.ClientID, keys)
	}

	return rt
}
