package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/snapgram/pkg/storage"
)

const (
	EnvMediaPublicURL      = "SNAPGRAM_MEDIA_PUBLIC_URL"
	EnvMediaPreviewWidth   = "SNAPGRAM_MEDIA_PREVIEW_WIDTH"
	EnvMediaPreviewHeight  = "SNAPGRAM_MEDIA_PREVIEW_HEIGHT"
	EnvMediaPreviewGravity = "SNAPGRAM_MEDIA_PREVIEW_GRAVITY"
	EnvMediaPreviewQuality = "SNAPGRAM_MEDIA_PREVIEW_QUALITY"
)

// MediaConfig holds image addressing settings. PublicURL is the externally
// reachable origin of the service, used to build preview and avatar URLs.
type MediaConfig struct {
	PublicURL string                 `toml:"public_url"`
	Preview   storage.PreviewOptions `toml:"preview"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MediaConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *MediaConfig) Merge(overlay *MediaConfig) {
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
	if overlay.Preview.Width != 0 {
		c.Preview.Width = overlay.Preview.Width
	}
	if overlay.Preview.Height != 0 {
		c.Preview.Height = overlay.Preview.Height
	}
	if overlay.Preview.Gravity != "" {
		c.Preview.Gravity = overlay.Preview.Gravity
	}
	if overlay.Preview.Quality != 0 {
		c.Preview.Quality = overlay.Preview.Quality
	}
}

func (c *MediaConfig) loadDefaults() {
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost:8080"
	}
	if c.Preview.Width == 0 {
		c.Preview.Width = 2000
	}
	if c.Preview.Height == 0 {
		c.Preview.Height = 2000
	}
	if c.Preview.Gravity == "" {
		c.Preview.Gravity = "top"
	}
	if c.Preview.Quality == 0 {
		c.Preview.Quality = 100
	}
}

func (c *MediaConfig) loadEnv() {
	if v := os.Getenv(EnvMediaPublicURL); v != "" {
		c.PublicURL = v
	}
	if v := os.Getenv(EnvMediaPreviewWidth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Preview.Width = n
		}
	}
	if v := os.Getenv(EnvMediaPreviewHeight); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Preview.Height = n
		}
	}
	if v := os.Getenv(EnvMediaPreviewGravity); v != "" {
		c.Preview.Gravity = v
	}
	if v := os.Getenv(EnvMediaPreviewQuality); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Preview.Quality = n
		}
	}
}

func (c *MediaConfig) validate() error {
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")

	u, err := url.Parse(c.PublicURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("public_url must be an absolute URL: %q", c.PublicURL)
	}
	if err := c.Preview.Validate(); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
