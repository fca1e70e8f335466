package testsupport

import (
	"path/filepath"
	"testing"

	"reelchain/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ArchiveDir = filepath.Join(base, "data", "puzzles")
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.Retry.BaseDelayMS = 1

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

// WithTMDBBaseURL points the config at a stub TMDB server.
func WithTMDBBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
		b.cfg.TMDB.RequestsPerSecond = 0
		b.cfg.TMDB.CircuitBreaker = false
	}
}

// WithArchive toggles the JSON archive.
func WithArchive(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.Enabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
