package testsupport

import (
	"path/filepath"
	"testing"

	"sonashow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp data directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Sonarr.APIKey = "test"
	cfgVal.TMDB.APIKey = "test"
	cfgVal.TVDB.APIKey = "test"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Network.RequestTimeout = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSonarr points the config at a Sonarr instance, usually an httptest server.
func WithSonarr(address string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sonarr.Address = address
	}
}

// WithTMDB overrides the TMDB base URL.
func WithTMDB(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = baseURL
	}
}

// WithTVDB overrides the TVDB base URL.
func WithTVDB(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TVDB.BaseURL = baseURL
	}
}

// WithDryRun enables dry-run adds.
func WithDryRun() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sonarr.DryRun = true
	}
}

// WriteConfig saves cfg next to its data directory and returns the path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(filepath.Dir(cfg.Paths.DataDir), "config.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return path
}
