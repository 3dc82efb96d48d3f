// Package preflight provides readiness checks for the configuration,
// local directories, and the remote Dispatch API.
//
// The "doctor" command runs RunAll and renders one row per check. The
// checks are advisory: the workflow runner does not gate on them, and a
// failing check only tells the operator what to fix before a run.
package preflight
