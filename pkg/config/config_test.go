package config

import (
	"os"
	"path/filepath"
	"testing"
)

func mapLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(mapLookup(nil))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if cfg.Sampling.NumWorkers != 1 || cfg.Sampling.MaxDepth != 50 {
		t.Errorf("Expected 1 worker and depth 50, got %+v", cfg.Sampling)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		"PT_WIDTH":      "640",
		"PT_HEIGHT":     "320",
		"PT_SAMPLES":    "16",
		"PT_MAX_DEPTH":  "8",
		"PT_SEED":       "-12345678901",
		"PT_WORKERS":    "0",
		"PT_TILE_SIZE":  "64",
		"PT_PORT":       "9090",
		"PT_OUTPUT_DIR": "/tmp/renders",
		"S3_BUCKET":     "renders",
		"S3_ENDPOINT":   "http://minio:9000",
		"S3_PREFIX":     "pt",
		"S3_REGION":     "",
	}))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	s := cfg.Sampling
	if s.Width != 640 || s.Height != 320 || s.SamplesPerPixel != 16 || s.MaxDepth != 8 {
		t.Errorf("Unexpected sampling config %+v", s)
	}
	if s.Seed != -12345678901 || s.NumWorkers != 0 || s.TileSize != 64 {
		t.Errorf("Unexpected seed/workers/tiles %+v", s)
	}
	if cfg.Port != 9090 || cfg.OutputDir != "/tmp/renders" {
		t.Errorf("Unexpected port/output dir %d %s", cfg.Port, cfg.OutputDir)
	}
	if !cfg.S3.Enabled() || cfg.S3.Endpoint != "http://minio:9000" || cfg.S3.Prefix != "pt" {
		t.Errorf("Unexpected S3 config %+v", cfg.S3)
	}
	// Empty values keep the default
	if cfg.S3.Region != "us-east-1" {
		t.Errorf("Expected default region, got %q", cfg.S3.Region)
	}
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	if _, err := FromEnv(mapLookup(map[string]string{"PT_SAMPLES": "many"})); err == nil {
		t.Error("Expected error for non-numeric PT_SAMPLES")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "PT_WIDTH=123\nS3_BUCKET=from-dotenv\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	// godotenv.Load never overrides variables that are already set
	t.Setenv("PT_WIDTH", "")
	os.Unsetenv("PT_WIDTH")
	t.Setenv("S3_BUCKET", "from-env")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sampling.Width != 123 {
		t.Errorf("Expected width 123 from .env, got %d", cfg.Sampling.Width)
	}
	if cfg.S3.Bucket != "from-env" {
		t.Errorf("Expected environment to win over .env, got %q", cfg.S3.Bucket)
	}
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Expected missing .env to be ignored, got %v", err)
	}
}

func TestApplySamplingEnv(t *testing.T) {
	base := Default().Sampling
	base.Width, base.Height = 200, 100

	got, err := ApplySamplingEnv(base, mapLookup(map[string]string{"PT_HEIGHT": "50"}))
	if err != nil {
		t.Fatalf("ApplySamplingEnv failed: %v", err)
	}
	if got.Width != 200 || got.Height != 50 {
		t.Errorf("Expected 200x50, got %dx%d", got.Width, got.Height)
	}

	if _, err := ApplySamplingEnv(base, mapLookup(map[string]string{"PT_SEED": "1.5"})); err == nil {
		t.Error("Expected error for non-integer PT_SEED")
	}
}
