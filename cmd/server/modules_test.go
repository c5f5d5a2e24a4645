package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/snapgram/pkg/lifecycle"
)

type readyFlag struct{ ready atomic.Bool }

func (f *readyFlag) Ready() bool { return f.ready.Load() }

func TestHealthAndReadiness(t *testing.T) {
	lc := lifecycle.New()
	db := &readyFlag{}
	router := buildRouter(lc, db)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		return rec
	}

	if rec := get("/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	if rec := get("/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before startup = %d, want 503", rec.Code)
	}

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}

	if rec := get("/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with database down = %d, want 503", rec.Code)
	}

	db.ready.Store(true)

	rec := get("/readyz")
	if rec.Code != http.StatusOK {
		t.Errorf("readyz after startup = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ready"`) {
		t.Errorf("body = %q", rec.Body.String())
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
