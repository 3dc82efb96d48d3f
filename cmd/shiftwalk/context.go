package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"shiftwalk/internal/config"
	"shiftwalk/internal/dispatch"
	"shiftwalk/internal/journal"
	"shiftwalk/internal/logging"
)

// commandContext resolves configuration, logging, the Dispatch client, and the
// run journal exactly once per invocation and shares them across subcommands.
type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration file, applies command-line overrides,
// and creates the directories the tool writes to.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		c.applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) {
	if v := strings.TrimSpace(c.flags.server); v != "" {
		cfg.Server.Host = v
	}
	if c.flags.site > 0 {
		cfg.Server.Site = c.flags.site
	}
	if v := strings.TrimSpace(c.flags.apiKey); v != "" {
		cfg.Server.APIKey = v
	}
	if v := strings.TrimSpace(c.flags.badge); v != "" {
		cfg.Operator.Badge = v
	}
	if c.flags.debug {
		cfg.Logging.Level = "debug"
	}
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonMode() bool {
	return c.flags.json
}

// dispatchClient builds an API client from the resolved configuration. Host
// and key checks live here rather than in config validation so offline
// commands keep working without a reachable server.
func (c *commandContext) dispatchClient() (*dispatch.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	base, err := cfg.BaseURL()
	if err != nil {
		return nil, fmt.Errorf("%w; set server.host in the config or pass --server", err)
	}
	if strings.TrimSpace(cfg.Server.APIKey) == "" {
		return nil, errors.New("api key is not configured; set server.api_key, export DISPATCH_API_KEY, or pass --api-key")
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return dispatch.New(base.String(), cfg.Server.APIKey, cfg.Server.Site,
		dispatch.WithTimeout(time.Duration(cfg.Server.RequestTimeout)*time.Second),
		dispatch.WithUserAgent(cfg.Server.UserAgent),
		dispatch.WithLogger(logger))
}

// openJournal opens the run journal, or returns a nil store when journaling
// is disabled in the configuration.
func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	return journal.Open(cfg)
}

// withJournal runs fn against an open journal store and closes it afterwards.
// Commands that only read history use this instead of managing the store.
func (c *commandContext) withJournal(fn func(*journal.Store) error) error {
	store, err := c.openJournal()
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("run journaling is disabled (journal.enabled = false)")
	}
	defer store.Close()
	return fn(store)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
