// Package workflow drives the scripted demonstration: reference-data
// discovery, clock-in, production records, one dispatch lifecycle, a recent-
// dispatch report, and clock-out, strictly in order with each step feeding
// identifiers extracted from the previous response. The first failing step
// halts the run; there are no retries and no partial recovery.
package workflow
