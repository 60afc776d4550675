// Package client implements the pomodoro-ctl operations.
//
// Each operation connects to the pomodoro server over gRPC, performs one call and
// prints a human readable result. Start can also wait for the alarm with a countdown bar.
package client
