package preflight

import (
	"context"

	"shiftwalk/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for the given config. Directory
// checks are skipped for features that are disabled or unset.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckConfig(cfg))

	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("Journal directory", cfg.Journal.Dir))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}

	results = append(results, CheckSiteZone(cfg))
	results = append(results, CheckAPI(ctx, cfg))

	return results
}
