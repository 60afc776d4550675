// Package trigger persists the single pending alarm trigger.
//
// The slot survives daemon restarts. Backends share one Store interface:
// a JSON file written atomically, an embedded sqlite database and a redis hash.
package trigger
