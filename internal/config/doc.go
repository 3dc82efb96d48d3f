// Package config loads, normalizes, and validates shiftwalk's TOML
// configuration.
//
// Resolution order: an explicit --config path, then
// ~/.config/shiftwalk/config.toml, then shiftwalk.toml in the working
// directory, then built-in defaults. The API key may come from the
// DISPATCH_API_KEY environment variable so it can stay out of the file.
// Loaded configs always have paths expanded and defaults applied; commands
// can rely on Validate having passed.
package config
