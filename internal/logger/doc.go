// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithFields),
//   - level configuration and parsing utilities,
//   - leveled helpers such as InfoKV and ErrorKV.
//
// The scheduler, the action runner and the transports accept a context and
// extract the logger from it, so every fired alarm and every released device
// shows up with its component name and session fields attached.
package logger
