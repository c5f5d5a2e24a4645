package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/snapgram/pkg/database"
	"github.com/JaimeStill/snapgram/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSnapgramEnv             = "SNAPGRAM_ENV"
	EnvSnapgramShutdownTimeout = "SNAPGRAM_SHUTDOWN_TIMEOUT"
	EnvSnapgramVersion         = "SNAPGRAM_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "SNAPGRAM_DB_URL",
	Host:            "SNAPGRAM_DB_HOST",
	Port:            "SNAPGRAM_DB_PORT",
	Name:            "SNAPGRAM_DB_NAME",
	User:            "SNAPGRAM_DB_USER",
	Password:        "SNAPGRAM_DB_PASSWORD",
	SSLMode:         "SNAPGRAM_DB_SSL_MODE",
	ApplicationName: "SNAPGRAM_DB_APPLICATION_NAME",
	MaxOpenConns:    "SNAPGRAM_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SNAPGRAM_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SNAPGRAM_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SNAPGRAM_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:          "SNAPGRAM_STORAGE_PROVIDER",
	ContainerName:     "SNAPGRAM_STORAGE_CONTAINER_NAME",
	ConnectionString:  "SNAPGRAM_STORAGE_CONNECTION_STRING",
	ServiceURL:        "SNAPGRAM_STORAGE_SERVICE_URL",
	S3Endpoint:        "SNAPGRAM_STORAGE_S3_ENDPOINT",
	S3Region:          "SNAPGRAM_STORAGE_S3_REGION",
	S3AccessKeyID:     "SNAPGRAM_STORAGE_S3_ACCESS_KEY_ID",
	S3SecretAccessKey: "SNAPGRAM_STORAGE_S3_SECRET_ACCESS_KEY",
	S3UsePathStyle:    "SNAPGRAM_STORAGE_S3_USE_PATH_STYLE",
}

// Config is the root configuration for the Snapgram service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Media           MediaConfig     `toml:"media"`
	Auth            AuthConfig      `toml:"auth"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// PreviewBase returns the absolute URL under which image previews are served.
func (c *Config) PreviewBase() string {
	return c.Media.PublicURL + c.API.BasePath + "/storage/preview"
}

// AvatarBase returns the absolute URL under which initials avatars are served.
func (c *Config) AvatarBase() string {
	return c.Media.PublicURL + c.API.BasePath + "/avatars"
}

// Env returns the SNAPGRAM_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSnapgramEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Media.Merge(&overlay.Media)
	c.Auth.Merge(&overlay.Auth)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Media.Finalize(); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	if err := c.Auth.Finalize(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSnapgramShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSnapgramVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSnapgramEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
