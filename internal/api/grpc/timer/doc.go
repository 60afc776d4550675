// Package timer implements the gRPC transport for the timer service.
//
// It adapts wire messages to domain types and calls into a provided
// control-surface interface, translating domain errors to status codes.
package timer
