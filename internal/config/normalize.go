package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeOperator()
	c.normalizeDemo()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.Host = strings.TrimRight(strings.TrimSpace(c.Server.Host), "/")
	c.Server.APIKey = strings.TrimSpace(c.Server.APIKey)
	if c.Server.APIKey == "" {
		if value, ok := os.LookupEnv("DISPATCH_API_KEY"); ok {
			c.Server.APIKey = strings.TrimSpace(value)
		}
	}
	c.Server.UserAgent = strings.TrimSpace(c.Server.UserAgent)
	if c.Server.UserAgent == "" {
		c.Server.UserAgent = defaultUserAgent
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}
	return nil
}

func (c *Config) normalizeOperator() {
	c.Operator.Badge = strings.TrimSpace(c.Operator.Badge)
	c.Operator.DisplayName = strings.TrimSpace(c.Operator.DisplayName)
}

func (c *Config) normalizeDemo() {
	c.Demo.MachineCode = strings.TrimSpace(c.Demo.MachineCode)
	c.Demo.DispatchType = strings.TrimSpace(c.Demo.DispatchType)
	c.Demo.SiteTimezone = strings.TrimSpace(c.Demo.SiteTimezone)
	if strings.TrimSpace(c.Demo.DispatchDescription) == "" {
		c.Demo.DispatchDescription = defaultDispatchDescription
	}
	if c.Demo.ReportLimit <= 0 {
		c.Demo.ReportLimit = defaultReportLimit
	}
}

func (c *Config) normalizeJournal() error {
	if strings.TrimSpace(c.Journal.Dir) == "" {
		c.Journal.Dir = defaultJournalDir
	}
	var err error
	if c.Journal.Dir, err = ExpandPath(c.Journal.Dir); err != nil {
		return fmt.Errorf("journal.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		var err error
		if c.Logging.Dir, err = ExpandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
