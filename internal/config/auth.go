package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvAuthTokenSecret  = "SNAPGRAM_AUTH_TOKEN_SECRET"
	EnvAuthTokenTTL     = "SNAPGRAM_AUTH_TOKEN_TTL"
	EnvAuthIssuer       = "SNAPGRAM_AUTH_ISSUER"
	EnvAuthOIDCIssuer   = "SNAPGRAM_AUTH_OIDC_ISSUER"
	EnvAuthOIDCClientID = "SNAPGRAM_AUTH_OIDC_CLIENT_ID"
	EnvAuthOIDCJWKSURL  = "SNAPGRAM_AUTH_OIDC_JWKS_URL"
)

// MinTokenSecretLength is the shortest accepted HMAC signing secret.
const MinTokenSecretLength = 32

// AuthConfig holds session token settings and the optional external
// identity provider.
type AuthConfig struct {
	TokenSecret string     `toml:"token_secret"`
	TokenTTL    string     `toml:"token_ttl"`
	Issuer      string     `toml:"issuer"`
	OIDC        OIDCConfig `toml:"oidc"`
}

// OIDCConfig identifies an OpenID Connect provider whose ID tokens are
// accepted. An empty Issuer disables it.
type OIDCConfig struct {
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
	JWKSURL  string `toml:"jwks_url"`
}

// Enabled reports whether an external provider is configured.
func (c *OIDCConfig) Enabled() bool {
	return c.Issuer != ""
}

// TokenTTLDuration returns TokenTTL as a time.Duration.
func (c *AuthConfig) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AuthConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.TokenSecret != "" {
		c.TokenSecret = overlay.TokenSecret
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.OIDC.Issuer != "" {
		c.OIDC.Issuer = overlay.OIDC.Issuer
	}
	if overlay.OIDC.ClientID != "" {
		c.OIDC.ClientID = overlay.OIDC.ClientID
	}
	if overlay.OIDC.JWKSURL != "" {
		c.OIDC.JWKSURL = overlay.OIDC.JWKSURL
	}
}

func (c *AuthConfig) loadDefaults() {
	if c.TokenTTL == "" {
		c.TokenTTL = "168h"
	}
	if c.Issuer == "" {
		c.Issuer = "snapgram"
	}
}

func (c *AuthConfig) loadEnv() {
	if v := os.Getenv(EnvAuthTokenSecret); v != "" {
		c.TokenSecret = v
	}
	if v := os.Getenv(EnvAuthTokenTTL); v != "" {
		c.TokenTTL = v
	}
	if v := os.Getenv(EnvAuthIssuer); v != "" {
		c.Issuer = v
	}
	if v := os.Getenv(EnvAuthOIDCIssuer); v != "" {
		c.OIDC.Issuer = v
	}
	if v := os.Getenv(EnvAuthOIDCClientID); v != "" {
		c.OIDC.ClientID = v
	}
	if v := os.Getenv(EnvAuthOIDCJWKSURL); v != "" {
		c.OIDC.JWKSURL = v
	}
}

func (c *AuthConfig) validate() error {
	if len(c.TokenSecret) < MinTokenSecretLength {
		return fmt.Errorf("token_secret must be at least %d bytes", MinTokenSecretLength)
	}
	ttl, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.OIDC.Enabled() && (c.OIDC.ClientID == "" || c.OIDC.JWKSURL == "") {
		return fmt.Errorf("oidc: client_id and jwks_url required when issuer is set")
	}
	return nil
}
