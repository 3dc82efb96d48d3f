// Package main hosts the shiftwalk CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into Dispatch
// API calls, run journal inspection, readiness checks, and configuration
// scaffolding. Configuration resolution, API client construction, and logger
// setup are centralized in commandContext so individual subcommands stay
// focused on presentation.
package main
