// Package dispatch implements the client for the remote Dispatch
// manufacturing-operations REST API.
//
// The core of the package is Client.Send: it issues one HTTP call against
// https://<host>/api/1.0/<resource>/, blocks until the response or a
// transport failure arrives, and validates the JSON envelope every endpoint
// returns ({"success": bool, "data": ..., "error": ...}). Validation applies
// a fixed ladder: transport failure, non-200 status, empty body, malformed
// or non-object JSON, then the business-level success flag. Each rung maps
// to a distinct exported error type so callers can classify failures with
// errors.As.
//
// Parameters are an ordered list of name/value pairs; GET calls carry them
// in the query string and POST calls carry them form-encoded in the body.
// The client injects the auth parameter on every call. Typed wrappers cover
// the endpoints the demonstration workflow touches (reference-data
// discovery, clock events, cycle counts, dispatches, pitch production) and
// decode the envelope's data field into explicit result structs.
//
// The client performs no retries and keeps no state between calls; any
// failure propagates immediately to the caller.
package dispatch
