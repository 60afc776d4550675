// Package common holds helpers shared by the daemon clients.
//
// It provides a lightweight gRPC client wrapper with timeouts and a helper that
// detects the current system actor (hostname/username) for the daemon's audit log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
