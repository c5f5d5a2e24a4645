package database_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/snapgram/pkg/database"
)

func TestConfigDefaults(t *testing.T) {
	cfg := database.Config{Name: "snapgram", User: "snapgram"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "localhost" || cfg.Port != 5432 || cfg.SSLMode != "disable" {
		t.Errorf("connection defaults = %s:%d %s", cfg.Host, cfg.Port, cfg.SSLMode)
	}
	if cfg.ApplicationName != "snapgram" {
		t.Errorf("ApplicationName = %q, want snapgram", cfg.ApplicationName)
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 {
		t.Errorf("pool = %d/%d, want 25/5", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "15m" || cfg.ConnTimeout != "5s" {
		t.Errorf("durations = %s/%s", cfg.ConnMaxLifetime, cfg.ConnTimeout)
	}
}

func TestConfigDsn(t *testing.T) {
	cfg := database.Config{
		Host:            "db.internal",
		Port:            6543,
		Name:            "snapgram",
		User:            "app",
		Password:        "p@ss/word?",
		SSLMode:         "require",
		ApplicationName: "snapgram",
	}

	u, err := url.Parse(cfg.Dsn())
	if err != nil {
		t.Fatalf("Dsn() is not a valid url: %v", err)
	}
	if u.Scheme != "postgres" || u.Host != "db.internal:6543" || u.Path != "/snapgram" {
		t.Errorf("dsn = %s", u)
	}
	if pw, _ := u.User.Password(); pw != "p@ss/word?" {
		t.Errorf("password = %q, want round trip", pw)
	}
	if u.Query().Get("sslmode") != "require" || u.Query().Get("application_name") != "snapgram" {
		t.Errorf("query = %s", u.RawQuery)
	}
}

func TestConfigURLOverrides(t *testing.T) {
	raw := "postgres://u:p@remote:5432/other?sslmode=disable"
	cfg := database.Config{URL: raw}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Dsn() != raw {
		t.Errorf("Dsn() = %q, want %q", cfg.Dsn(), raw)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "envhost")
	t.Setenv("TEST_DB_PORT", "5433")
	t.Setenv("TEST_DB_NAME", "envdb")
	t.Setenv("TEST_DB_USER", "envuser")
	t.Setenv("TEST_DB_MAX_OPEN", "50")
	t.Setenv("TEST_DB_TIMEOUT", "9s")

	env := &database.Env{
		Host:         "TEST_DB_HOST",
		Port:         "TEST_DB_PORT",
		Name:         "TEST_DB_NAME",
		User:         "TEST_DB_USER",
		MaxOpenConns: "TEST_DB_MAX_OPEN",
		ConnTimeout:  "TEST_DB_TIMEOUT",
	}

	cfg := database.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "envhost" || cfg.Port != 5433 || cfg.Name != "envdb" || cfg.User != "envuser" {
		t.Errorf("connection = %+v", cfg)
	}
	if cfg.MaxOpenConns != 50 || cfg.ConnTimeout != "9s" {
		t.Errorf("pool = %d timeout = %s", cfg.MaxOpenConns, cfg.ConnTimeout)
	}
}

func TestConfigEnvIgnoresBadInt(t *testing.T) {
	t.Setenv("TEST_DB_PORT", "not-a-port")

	cfg := database.Config{Name: "db", User: "u"}
	if err := cfg.Finalize(&database.Env{Port: "TEST_DB_PORT"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want default 5432", cfg.Port)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{User: "u"}, "name required"},
		{"missing user", database.Config{Name: "db"}, "user required"},
		{"bad lifetime", database.Config{Name: "db", User: "u", ConnMaxLifetime: "soon"}, "conn_max_lifetime"},
		{"bad timeout", database.Config{Name: "db", User: "u", ConnTimeout: "later"}, "conn_timeout"},
		{"idle exceeds open", database.Config{Name: "db", User: "u", MaxOpenConns: 2, MaxIdleConns: 4}, "exceeds max_open_conns"},
		{"malformed url", database.Config{URL: "postgres://[::1"}, "invalid connection settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := database.Config{Host: "base", Port: 5432, Name: "db", User: "u", MaxOpenConns: 10}
	base.Merge(&database.Config{Host: "overlay", MaxIdleConns: 3})

	if base.Host != "overlay" || base.MaxIdleConns != 3 {
		t.Errorf("overlay not applied: %+v", base)
	}
	if base.Name != "db" || base.Port != 5432 || base.MaxOpenConns != 10 {
		t.Errorf("base values lost: %+v", base)
	}
}
