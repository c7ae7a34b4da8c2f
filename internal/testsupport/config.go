package testsupport

import (
	"path/filepath"
	"testing"

	"stitchflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithTemplatePath points the test config at a custom template file.
func WithTemplatePath(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.TemplatePath = path
	}
}

// WithRecentWindowDays overrides the statistics recency window.
func WithRecentWindowDays(days int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.RecentWindowDays = days
	}
}
