package testsupport

import (
	"path/filepath"
	"testing"

	"segprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config whose dataset directories live under a fresh
// temp directory. Options are applied after the defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceRoot = filepath.Join(base, "datasets_origin")
	cfg.Paths.MergedDir = filepath.Join(base, "merged_data")
	cfg.Paths.OutputDir = filepath.Join(base, "datasets")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSeed fixes the split shuffle seed.
func WithSeed(seed int64) ConfigOption {
	return func(c *config.Config) {
		c.Split.Seed = seed
	}
}

// WithClasses sets the class count and optional names.
func WithClasses(count int, names ...string) ConfigOption {
	return func(c *config.Config) {
		c.Classes.Count = count
		c.Classes.Names = names
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.MergedDir)
}
