// Package config defines the daemon and CLI settings and provides helpers to
// load, validate and save them in YAML format.
//
// Validate fills defaults for every optional section so callers can rely on
// non-empty store paths, player commands and notification settings.
package config
