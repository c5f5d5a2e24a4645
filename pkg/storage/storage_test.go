package storage_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/snapgram/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=snapgramstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/snapgramstore;"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{
			name: "azure connection string",
			cfg: storage.Config{
				Provider:         storage.ProviderAzure,
				ContainerName:    "media",
				ConnectionString: azuriteConnString,
			},
		},
		{
			name: "azure invalid connection string",
			cfg: storage.Config{
				Provider:         storage.ProviderAzure,
				ContainerName:    "media",
				ConnectionString: "not-a-connection-string",
			},
			wantErr: true,
		},
		{
			name: "s3 static credentials",
			cfg: storage.Config{
				Provider:      storage.ProviderS3,
				ContainerName: "media",
				S3: storage.S3Config{
					Endpoint:        "http://127.0.0.1:9000",
					Region:          "us-east-1",
					AccessKeyID:     "minio",
					SecretAccessKey: "minio123",
					UsePathStyle:    true,
				},
			},
		},
		{
			name:    "unknown provider",
			cfg:     storage.Config{Provider: "gcs", ContainerName: "media"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := storage.New(&tt.cfg, discardLogger())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if sys == nil {
				t.Fatal("New() returned nil system")
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"invalid preview", storage.ErrInvalidPreview, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown", fmt.Errorf("unexpected failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
