package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/storage"
)

// Config holds the settings shared by the CLI and the web service.
// Command-line flags override these values.
type Config struct {
	Sampling  renderer.SamplingConfig
	OutputDir string
	ScenesDir string
	Port      int
	S3        storage.S3Config
}

// Default returns the compiled-in configuration
func Default() Config {
	return Config{
		Sampling:  renderer.DefaultSamplingConfig(),
		OutputDir: "output",
		ScenesDir: "scenes",
		Port:      8080,
		S3: storage.S3Config{
			Region: "us-east-1",
		},
	}
}

// Load reads the optional .env files into the environment and then applies it
// on top of the defaults. Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv applies the variables visible through lookup on top of the defaults
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	sampling, err := ApplySamplingEnv(cfg.Sampling, lookup)
	if err != nil {
		return Config{}, err
	}
	cfg.Sampling = sampling

	env := envReader{lookup: lookup}
	env.int("PT_PORT", &cfg.Port)
	env.string("PT_OUTPUT_DIR", &cfg.OutputDir)
	env.string("PT_SCENES_DIR", &cfg.ScenesDir)

	env.string("S3_ENDPOINT", &cfg.S3.Endpoint)
	env.string("S3_REGION", &cfg.S3.Region)
	env.string("S3_BUCKET", &cfg.S3.Bucket)
	env.string("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	env.string("S3_SECRET_KEY", &cfg.S3.SecretKey)
	env.string("S3_PREFIX", &cfg.S3.Prefix)
	env.string("S3_ACL", &cfg.S3.ACL)

	if env.err != nil {
		return Config{}, env.err
	}
	return cfg, nil
}

// ApplySamplingEnv overrides the fields of base whose PT_ variables are set.
// Scenes use it to layer the environment over their own suggested settings.
func ApplySamplingEnv(base renderer.SamplingConfig, lookup func(string) (string, bool)) (renderer.SamplingConfig, error) {
	env := envReader{lookup: lookup}

	env.int("PT_WIDTH", &base.Width)
	env.int("PT_HEIGHT", &base.Height)
	env.int("PT_SAMPLES", &base.SamplesPerPixel)
	env.int("PT_MAX_DEPTH", &base.MaxDepth)
	env.int64("PT_SEED", &base.Seed)
	env.int("PT_WORKERS", &base.NumWorkers)
	env.int("PT_TILE_SIZE", &base.TileSize)

	if env.err != nil {
		return renderer.SamplingConfig{}, env.err
	}
	return base, nil
}

// envReader parses variables, keeping the first error
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) string(key string, dst *string) {
	if value, ok := e.lookup(key); ok && value != "" {
		*dst = value
	}
}

func (e *envReader) int(key string, dst *int) {
	var v int64
	if e.parse(key, &v) {
		*dst = int(v)
	}
}

func (e *envReader) int64(key string, dst *int64) {
	e.parse(key, dst)
}

func (e *envReader) parse(key string, dst *int64) bool {
	value, ok := e.lookup(key)
	if !ok || value == "" {
		return false
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
		}
		return false
	}
	*dst = v
	return true
}
