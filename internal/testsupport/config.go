package testsupport

import (
	"path/filepath"
	"testing"

	"shiftwalk/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Server.Host = "https://dispatch.example.com"
	cfg.Server.APIKey = "test-key"
	cfg.Operator.Badge = "B-1042"
	cfg.Journal.Dir = filepath.Join(base, "journal")
	cfg.Logging.Dir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithServerHost points the config at the given server URL (scheme+host).
func WithServerHost(host string) ConfigOption {
	return func(c *config.Config) {
		c.Server.Host = host
	}
}

// WithJournalDisabled turns off run journaling.
func WithJournalDisabled() ConfigOption {
	return func(c *config.Config) {
		c.Journal.Enabled = false
	}
}
