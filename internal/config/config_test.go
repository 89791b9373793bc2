package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"HOST", "PORT", "REQUEST_TIMEOUT", "IMAGE_FETCH_TIMEOUT", "ANALYSIS_TIMEOUT",
		"MAX_REQUEST_BODY_SIZE", "MAX_IMAGE_DIMENSION", "SAMPLE_STRIDE", "MAX_WORKERS",
		"MARKER_SEED", "AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_KEY", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("Expected 0.0.0.0:8080, got %s", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected 30s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxImageDimension != 1024 || cfg.SampleStride != 2 || cfg.MaxWorkers != 0 {
		t.Errorf("Unexpected scan defaults: %+v", cfg)
	}
	if cfg.MarkerSeed != nil {
		t.Error("Expected no marker seed by default")
	}
	if cfg.BlobStorageEnabled() {
		t.Error("Expected blob storage to be disabled by default")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("Expected wildcard CORS origin, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HOST", " 127.0.0.1 ")
	t.Setenv("PORT", "9090")
	t.Setenv("ANALYSIS_TIMEOUT", "5s")
	t.Setenv("SAMPLE_STRIDE", "3")
	t.Setenv("MAX_WORKERS", "4")
	t.Setenv("MARKER_SEED", "1234")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "clinic")
	t.Setenv("AZURE_STORAGE_KEY", "c2VjcmV0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.ServerAddress() != "127.0.0.1:9090" {
		t.Errorf("Expected trimmed address, got %s", cfg.ServerAddress())
	}
	if cfg.AnalysisTimeout != 5*time.Second {
		t.Errorf("Expected 5s, got %s", cfg.AnalysisTimeout)
	}
	if cfg.MarkerSeed == nil || *cfg.MarkerSeed != 1234 {
		t.Error("Expected marker seed 1234")
	}
	if !cfg.BlobStorageEnabled() {
		t.Error("Expected blob storage to be enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("Expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}

	analysis := cfg.AnalysisConfig()
	if analysis.SampleStride != 3 || analysis.MaxWorkers != 4 {
		t.Errorf("Expected scan settings to carry over, got stride=%d workers=%d", analysis.SampleStride, analysis.MaxWorkers)
	}
	if analysis.Markers.Seed == nil || *analysis.Markers.Seed != 1234 {
		t.Error("Expected marker seed to carry over")
	}
	if err := analysis.Validate(); err != nil {
		t.Errorf("Expected a valid analysis config, got %v", err)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"port not numeric", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"body size", "MAX_REQUEST_BODY_SIZE", "-1"},
		{"dimension", "MAX_IMAGE_DIMENSION", "8"},
		{"stride", "SAMPLE_STRIDE", "0"},
		{"workers", "MAX_WORKERS", "-2"},
		{"seed", "MARKER_SEED", "abc"},
		{"azure account without key", "AZURE_STORAGE_ACCOUNT", "clinic"},
		{"cors origin without scheme", "CORS_ALLOWED_ORIGINS", "app.example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("AZURE_STORAGE_ACCOUNT", "")
			t.Setenv("AZURE_STORAGE_KEY", "")
			t.Setenv(tc.key, tc.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
