package config

import (
	"errors"
	"fmt"
	"strings"
)

var logFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate ensures the configuration is usable. The server host and API key
// may be absent here; commands that talk to the Dispatch API enforce their
// presence with an actionable message when the client is built.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDemo(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Host) != "" {
		if _, err := c.BaseURL(); err != nil {
			return err
		}
	}
	if c.Server.Site < 1 {
		return errors.New("server.site must be a positive site number")
	}
	if c.Server.RequestTimeout < 1 {
		return errors.New("server.request_timeout must be at least 1 second")
	}
	return nil
}

func (c *Config) validateDemo() error {
	if c.Demo.CycleCount < 0 {
		return errors.New("demo.cycle_count must not be negative")
	}
	if c.Demo.PitchQuantity < 0 {
		return errors.New("demo.pitch_quantity must not be negative")
	}
	if c.Demo.PitchScrap < 0 {
		return errors.New("demo.pitch_scrap must not be negative")
	}
	if c.Demo.PitchScrap > c.Demo.PitchQuantity {
		return errors.New("demo.pitch_scrap must not exceed demo.pitch_quantity")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if !c.Journal.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Journal.Dir) == "" {
		return errors.New("journal.dir must be set when journal.enabled is true")
	}
	if c.Journal.KeepRuns < 0 {
		return errors.New("journal.keep_runs must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := logFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	if _, ok := logLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q (use debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}
