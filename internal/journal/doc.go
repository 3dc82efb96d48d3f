// Package journal persists a local SQLite record of demonstration runs:
// one row per run and one row per executed step, with timing, endpoint, and
// outcome detail.
//
// The journal is strictly write-only while a run executes and is never read
// during request construction, so every API request stays independent of
// anything recorded here. History commands read it afterwards. A nil *Store
// acts as a disabled journal so callers need no branching when journaling
// is turned off.
package journal
