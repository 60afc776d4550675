// Package timer contains the core domain types of the pomodoro alarm.
//
// It defines the Payload carried by a trigger, the single PendingTrigger slot,
// the SessionInfo snapshot of a ringing alarm and the StartRequest validation
// shared by every transport, with Clone helpers to avoid leaking internal references.
package timer
