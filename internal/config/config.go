package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server describes how to reach the remote Dispatch API.
type Server struct {
	// Host is the scheme+host of the Dispatch server, e.g. "https://acme.dispatchops.example".
	Host string `toml:"host"`
	// APIKey is sent as the auth parameter on every call. Falls back to the
	// DISPATCH_API_KEY environment variable when empty.
	APIKey string `toml:"api_key"`
	// Site is the site number scoping most requests.
	Site int `toml:"site"`
	// RequestTimeout bounds each HTTP call, in seconds.
	RequestTimeout int    `toml:"request_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// Operator identifies who the demonstration clocks in and out.
type Operator struct {
	// Badge is the operator badge or username used for clock_in/clock_out.
	Badge       string `toml:"badge"`
	DisplayName string `toml:"display_name"`
}

// Demo tunes the scripted workflow.
type Demo struct {
	// MachineCode selects a machine by code; the first discovered machine is
	// used when empty.
	MachineCode string `toml:"machine_code"`
	// DispatchType selects a dispatch type by code; first discovered when empty.
	DispatchType        string `toml:"dispatch_type"`
	CycleCount          int    `toml:"cycle_count"`
	PitchQuantity       int    `toml:"pitch_quantity"`
	PitchScrap          int    `toml:"pitch_scrap"`
	DispatchDescription string `toml:"dispatch_description"`
	// ReportLimit caps the recent-dispatch report pulled at the end of a run.
	ReportLimit int `toml:"report_limit"`
	// SiteTimezone is the fallback IANA zone used for wire timestamps when the
	// discovered site record does not carry one.
	SiteTimezone string `toml:"site_timezone"`
}

// Journal configures the local SQLite record of demonstration runs.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	// KeepRuns bounds how many finished runs are retained; 0 keeps everything.
	KeepRuns int `toml:"keep_runs"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// Dir enables file output alongside stdout when set.
	Dir string `toml:"dir"`
}

// Config encapsulates all configuration values for shiftwalk.
//
// Configuration sections by subsystem:
//   - Server: Dispatch host, API key, site scope, request timeout
//   - Operator: badge identity for clock-in/clock-out
//   - Demo: workflow tuning (machine/dispatch-type selection, quantities)
//   - Journal: local run journal location and retention
//   - Logging: log format, level, optional file output
type Config struct {
	Server   Server   `toml:"server"`
	Operator Operator `toml:"operator"`
	Demo     Demo     `toml:"demo"`
	Journal  Journal  `toml:"journal"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/shiftwalk/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shiftwalk.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the tool writes to.
func (c *Config) EnsureDirectories() error {
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Dir) != "" {
		if err := os.MkdirAll(c.Journal.Dir, 0o755); err != nil {
			return fmt.Errorf("create journal directory %q: %w", c.Journal.Dir, err)
		}
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Logging.Dir, err)
		}
	}
	return nil
}

// JournalDBPath returns the SQLite database location inside the journal directory.
func (c *Config) JournalDBPath() string {
	return filepath.Join(c.Journal.Dir, "journal.db")
}

// RunLockPath returns the lock file guarding concurrent demonstration runs.
func (c *Config) RunLockPath() string {
	return filepath.Join(c.Journal.Dir, "shiftwalk.lock")
}

// BaseURL parses the configured server host.
func (c *Config) BaseURL() (*url.URL, error) {
	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return nil, errors.New("server.host is not configured")
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse server.host %q: %w", c.Server.Host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server.host %q must use http or https", c.Server.Host)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server.host %q is missing a hostname", c.Server.Host)
	}
	return u, nil
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ prefixes and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
