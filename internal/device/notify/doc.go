// Package notify shows the visible alarm alert.
//
// The dbus notifier talks to the freedesktop notification server: alerts are
// critical, resident and never expire, and activating one runs the configured
// open command. The log notifier is a fallback for headless hosts.
package notify
