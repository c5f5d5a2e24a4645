package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/snapgram/pkg/module"
)

func TestNewInvalidPrefixPanics(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"nested path", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic for invalid prefix")
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	mux := http.NewServeMux()
	var gotPath string
	mux.HandleFunc("GET /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(r.PathValue("id")))
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	})

	api := module.New("/api", mux)
	var header string
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header = "applied"
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(api)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantPath string
	}{
		{"module route", "/api/posts/42", http.StatusOK, "/posts/42"},
		{"trailing slash", "/api/posts/42/", http.StatusOK, "/posts/42"},
		{"module root", "/api", http.StatusOK, "/"},
		{"native route", "/healthz", http.StatusNoContent, ""},
		{"similar prefix falls through", "/apix/posts", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPath, header = "", ""
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if gotPath != tt.wantPath {
				t.Errorf("inner path = %q, want %q", gotPath, tt.wantPath)
			}
			if tt.wantPath != "" && header != "applied" {
				t.Error("module middleware not applied")
			}
		})
	}
}

func TestStripDoesNotMutateOriginal(t *testing.T) {
	m := module.New("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest("GET", "/api/users", nil)

	m.ServeHTTP(httptest.NewRecorder(), req)

	if req.URL.Path != "/api/users" {
		t.Errorf("original path mutated to %q", req.URL.Path)
	}
}

func TestMountDuplicatePanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if recover() == nil {
			t.Error("expected panic for duplicate prefix")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
