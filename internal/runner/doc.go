// Package runner executes the side effects of a fired alarm.
//
// A Runner owns at most one live Session: a visible alert, a looping sound and
// a repeating vibration. Run replaces any live session and Stop releases it.
// Both are idempotent and safe for concurrent use. Device failures are logged
// per effect and never returned to the caller.
package runner
